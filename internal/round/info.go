package round

import (
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// Info represents the static information about a protocol run.
type Info struct {
	// ProtocolID is an identifier for this protocol.
	ProtocolID string
	// Config holds the curve, threshold and session ID shared by all parties.
	Config party.SessionConfig
}

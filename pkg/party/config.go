package party

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
)

// SessionConfig holds the parameters shared by all parties of one protocol run.
type SessionConfig struct {
	// Group is the curve the protocol operates on.
	Group curve.Curve
	// Threshold is the number of shares required to reconstruct the secret,
	// so that the sharing polynomial has degree Threshold-1.
	Threshold int
	// SessionID binds all messages of a run, and must be identical for all parties.
	// It should be unique for each execution, for example a counter or a common random string.
	SessionID []byte
	// Pool, if set, runs the expensive verifications of a round in parallel.
	Pool *pool.Pool
}

// Validate checks the configuration against the number of parties n.
func (c SessionConfig) Validate(n int) error {
	if c.Group == nil {
		return errors.New("session: curve is not set")
	}
	if n < 2 {
		return fmt.Errorf("session: %d parties, need at least 2", n)
	}
	if c.Threshold < 2 || c.Threshold > n {
		return fmt.Errorf("session: threshold %d is invalid for number of parties %d", c.Threshold, n)
	}
	return nil
}

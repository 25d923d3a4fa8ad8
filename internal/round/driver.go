package round

import (
	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// Driver is the type-erased view of a Context, used by code that orchestrates runs
// of different protocols.
type Driver interface {
	// DriveRound delivers inbound messages and returns the messages of the round that completed.
	DriveRound(inbound ...*Message) (outbound []*Message, done bool, err error)
	// Result returns the output of the protocol once it is done.
	Result() (interface{}, error)
	// Err returns the error that aborted the run, or nil.
	Err() error
	// Done returns true once the final round completed.
	Done() bool

	ProtocolID() string
	SSID() []byte
	SelfID() party.ID
	PartyIDs() party.IDSlice
	OtherPartyIDs() party.IDSlice
	Number() Number
	FinalRoundNumber() Number
	Logger() *zerolog.Logger
}

// Logged is implemented by drivers which accept an injected logger.
type Logged interface {
	SetLogger(log zerolog.Logger)
}

// SetLogger implements Logged.
// Unlike WithLogger, log is used as is: callers injecting a logger have already
// attached the protocol and party fields.
func (c *Context[S]) SetLogger(log zerolog.Logger) {
	c.log = log
}

var (
	_ Driver = (*Context[noState])(nil)
	_ Logged = (*Context[noState])(nil)
)

type noState struct{}

func (noState) Clone() noState { return noState{} }

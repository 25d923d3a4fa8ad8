package round

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// ErrNilFields is returned by ParseMessage when a decoded payload has a missing field.
var ErrNilFields = errors.New("message contained empty fields")

// Code classifies the failure that aborted a protocol run.
type Code uint8

const (
	// CodeInvalidPartyID is returned when a message references an unknown sender.
	CodeInvalidPartyID Code = iota + 1
	// CodeDecode is returned when a payload does not match the expected schema.
	CodeDecode
	// CodeVerification is returned on a commitment mismatch, proof failure, or index mismatch.
	CodeVerification
	// CodeCompute is returned when a joint computation invariant is violated.
	CodeCompute
)

func (c Code) String() string {
	switch c {
	case CodeInvalidPartyID:
		return "invalid party id"
	case CodeDecode:
		return "decode error"
	case CodeVerification:
		return "verification error"
	case CodeCompute:
		return "compute error"
	default:
		return fmt.Sprintf("code(%d)", uint8(c))
	}
}

// Error is the terminal failure of a protocol run.
type Error struct {
	Code Code
	// RoundNumber is the round in which the failure happened.
	RoundNumber Number
	// Culprit is the party whose message caused the failure, if it could be identified.
	Culprit party.ID
	// Err is the underlying error.
	Err error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Culprit != "" {
		return fmt.Sprintf("round %d: %s: party %s: %v", e.RoundNumber, e.Code, e.Culprit, e.Err)
	}
	return fmt.Sprintf("round %d: %s: %v", e.RoundNumber, e.Code, e.Err)
}

// Unwrap implements errors.Wrapper.
func (e *Error) Unwrap() error {
	return e.Err
}

// Verification returns an error with CodeVerification, blaming culprit.
// Rounds may return it from Compute when a cross-party check identifies a cheater.
func Verification(culprit party.ID, err error) *Error {
	return &Error{Code: CodeVerification, Culprit: culprit, Err: err}
}

package protocol

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
)

// Error is the terminal failure of a protocol run, with the round in which it occurred,
// its Code, and the party responsible if it is known.
type Error = round.Error

// Code classifies an Error.
type Code = round.Code

const (
	CodeInvalidPartyID = round.CodeInvalidPartyID
	CodeDecode         = round.CodeDecode
	CodeVerification   = round.CodeVerification
	CodeCompute        = round.CodeCompute
)

var (
	ErrNilMessage         = errors.New("protocol: message is nil")
	ErrWrongSSID          = errors.New("protocol: message SSID mismatch")
	ErrWrongProtocolID    = errors.New("protocol: wrong protocol ID")
	ErrWrongDestination   = errors.New("protocol: message is for another party")
	ErrInvalidRoundNumber = errors.New("protocol: round number beyond final round")
	ErrOutChanFull        = errors.New("protocol: out channel is full")
	ErrNotFinished        = errors.New("protocol: not finished")
	ErrStopped            = errors.New("protocol: stopped")
)

package party

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

var (
	ErrZeroIndex      = errors.New("party: Shamir index is zero")
	ErrNilIndex       = errors.New("party: Shamir index is missing")
	ErrDuplicateIndex = errors.New("party: duplicate Shamir index")
	ErrDuplicateID    = errors.New("party: duplicate ID")
	ErrEmptyID        = errors.New("party: empty ID")
	ErrUnknownID      = errors.New("party: unknown ID")
	ErrSecretMismatch = errors.New("party: public share does not match secret")
)

// Party describes one participant of a session.
type Party struct {
	ID ID
	// Index is the non-zero Shamir x-coordinate of the party's share.
	Index curve.Scalar
	// Public is the party's public share X, or nil while it is unknown.
	Public curve.Point
}

// Validate checks that the party has an ID and a usable Shamir index.
func (p Party) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if p.Index == nil {
		return ErrNilIndex
	}
	if p.Index.IsZero() {
		return ErrZeroIndex
	}
	return nil
}

// clone returns a copy of p whose scalar and point are not shared.
func (p Party) clone() Party {
	out := Party{ID: p.ID}
	if p.Index != nil {
		out.Index = p.Index.Curve().NewScalar().Set(p.Index)
	}
	if p.Public != nil {
		out.Public = p.Public.Curve().NewPoint().Set(p.Public)
	}
	return out
}

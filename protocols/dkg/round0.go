package dkg

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// round0 samples the local contribution and commits to it.
type round0 struct{}

func (round0) Number() round.Number { return 0 }

func (round0) Expects() round.Kind { return round.KindNone }

func (round0) Init(*round.Context[*state]) {}

func (round0) ParseMessage(*round.Context[*state], int, *round.Message) error {
	return errors.New("round 0 does not receive messages")
}

func (round0) VerifyMessage(*round.Context[*state], int) error { return nil }

// Compute samples rid, the chain key, the nonces τ and r, and a polynomial f of degree t-1
// with f(0) = x, then commits to
//
//	V = H(sid, index, rid, chainKey, X, A, B, F, {g⋅f(index_l)}ₗ, u)
func (round0) Compute(c *round.Context[*state]) error {
	s := c.State()
	group := c.Group()
	self := c.Directory().Self()

	switch {
	case s.refresh:
		s.secret = group.NewScalar()
	case s.secret == nil:
		s.secret = sample.ScalarUnit(rand.Reader, group)
	}

	rid, err := types.NewRID(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to sample rid: %w", err)
	}
	chainKey, err := types.NewRID(rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to sample chain key: %w", err)
	}

	var A, B curve.Point
	s.tau, A = sample.ScalarPointPair(rand.Reader, group)
	s.r, B = sample.ScalarPointPair(rand.Reader, group)

	f := polynomial.NewPolynomial(group, c.Threshold()-1, s.secret)
	s.sharesOut = make(map[party.ID]curve.Scalar, c.N())
	publicShares := make(map[party.ID]curve.Point, c.N())
	for _, p := range c.Directory().Parties() {
		share := f.Evaluate(p.Index)
		s.sharesOut[p.ID] = share
		publicShares[p.ID] = share.ActOnBase()
	}

	s.opening = &broadcast2{
		SID:          c.SSID(),
		Index:        self.Index,
		RID:          rid,
		ChainKey:     chainKey,
		X:            s.secret.ActOnBase(),
		A:            A,
		B:            B,
		Polynomial:   polynomial.NewPolynomialExponent(f),
		PublicShares: party.NewPointMap(publicShares),
	}

	commitment, decommitment, err := c.HashForID(self.ID).Commit(s.opening.committed()...)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.opening.Decommitment = decommitment
	s.commitments = make([]hash.Commitment, c.Directory().RemoteCount())
	s.selfCommitment = commitment
	return nil
}

func (round0) Finalize(c *round.Context[*state], out *round.Outbox) error {
	s := c.State()
	return out.Broadcast(&broadcast1{
		SID:        c.SSID(),
		Index:      s.opening.Index,
		Commitment: s.selfCommitment,
	})
}

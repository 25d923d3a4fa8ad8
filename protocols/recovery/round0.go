package recovery

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

// round0 samples a, r and t, proves knowledge of xᵢ and commits to
//
//	V = H(Xᵢ, i, j, k, A, R, T, φ, u)
type round0 struct{}

func (round0) Number() round.Number { return 0 }

func (round0) Expects() round.Kind { return round.KindNone }

func (round0) Init(*round.Context[*state]) {}

func (round0) ParseMessage(*round.Context[*state], int, *round.Message) error {
	return errors.New("round 0 does not receive messages")
}

func (round0) VerifyMessage(*round.Context[*state], int) error { return nil }

func (round0) Compute(c *round.Context[*state]) error {
	s := c.State()
	group := c.Group()
	self := c.Directory().Self()
	i, j, k := indexTriple(c)

	var A, R, T curve.Point
	s.a, A = sample.ScalarPointPair(rand.Reader, group)
	s.r, R = sample.ScalarPointPair(rand.Reader, group)
	s.t, T = sample.ScalarPointPair(rand.Reader, group)

	phi := zksch.RandomnessFrom(s.r).Prove(c.HashForID(self.ID), self.Public, c.Directory().Secret())
	if phi == nil {
		return errors.New("failed to prove knowledge of the share")
	}

	s.opening = &message2{
		SID: c.SSID(),
		X:   self.Public,
		I:   i,
		J:   j,
		K:   k,
		A:   A,
		R:   R,
		T:   T,
		Phi: phi,
	}
	commitment, decommitment, err := c.HashForID(self.ID).Commit(s.opening.committed()...)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.opening.Decommitment = decommitment
	s.commitment = commitment
	return nil
}

func (round0) Finalize(c *round.Context[*state], out *round.Outbox) error {
	return out.Send(partner(c).ID, &message1{
		SID:        c.SSID(),
		Commitment: c.State().commitment,
	})
}

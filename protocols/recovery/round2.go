package recovery

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

var (
	ErrIndexMismatch = errors.New("recovery: index triple mismatch")
	ErrCommitment    = errors.New("recovery: opening does not match commitment")
	ErrProof         = errors.New("recovery: failed to verify proof")
)

// round2 receives the opening of the partner, and computes this party's part of the lost share.
type round2 struct {
	msg *message2
}

func (*round2) Number() round.Number { return 2 }

func (*round2) Expects() round.Kind { return round.KindP2P }

func (*round2) Init(*round.Context[*state]) {}

func (r *round2) ParseMessage(c *round.Context[*state], _ int, msg *round.Message) error {
	body := emptyMessage2(c.Group())
	if err := round.Decode(msg.P2P, body); err != nil {
		return err
	}
	if err := body.validate(); err != nil {
		return err
	}
	r.msg = body
	return nil
}

// VerifyMessage checks that the partner agrees on (j, i, k), that X is its known public share,
// the proof φ, and the opening against the commitment of round 1.
func (r *round2) VerifyMessage(c *round.Context[*state], _ int) error {
	s := c.State()
	peer := partner(c)
	body := r.msg
	i, j, k := indexTriple(c)

	if !bytes.Equal(body.SID, c.SSID()) {
		return errors.New("wrong session ID")
	}
	if !body.I.Equal(j) || !body.J.Equal(i) || !body.K.Equal(k) {
		return ErrIndexMismatch
	}
	if !body.X.Equal(peer.Public) {
		return errors.New("public share does not match")
	}
	if !body.Phi.Verify(c.HashForID(peer.ID), body.X, &zksch.Commitment{C: body.R}) {
		return fmt.Errorf("%w: knowledge of the share", ErrProof)
	}
	if body.A.IsIdentity() || body.T.IsIdentity() {
		return errors.New("nonce is identity")
	}
	if !c.HashForID(peer.ID).Decommit(s.peerCommitment, body.Decommitment, body.committed()...) {
		return ErrCommitment
	}
	s.peerOpening = body
	return nil
}

// Compute derives Δ from a⋅A_peer, and the part λᵢ(k)⋅xᵢ ± Δ of the lost share.
// The party with the larger index adds Δ, the other subtracts it.
func (*round2) Compute(c *round.Context[*state]) error {
	s := c.State()
	group := c.Group()
	i, j, k := indexTriple(c)

	delta, err := blinding(c, s.a.Act(s.peerOpening.A))
	if err != nil {
		return err
	}
	if curve.Compare(i, j) <= 0 {
		delta.Negate()
	}

	lagrange, err := polynomial.LagrangeAt(group, []curve.Scalar{i, j}, k)
	if err != nil {
		return err
	}
	share := group.NewScalar().Set(lagrange[0]).Mul(c.Directory().Secret())
	share.Add(delta)
	if share.IsZero() {
		return errors.New("recovered part is zero")
	}
	s.share = share
	return nil
}

func (*round2) Finalize(c *round.Context[*state], out *round.Outbox) error {
	s := c.State()
	self := c.Directory().SelfID()
	public := s.share.ActOnBase()
	proof := zksch.RandomnessFrom(s.t).Prove(c.HashForID(self), public, s.share)
	if proof == nil {
		return errors.New("failed to prove knowledge of the recovered part")
	}
	return out.Send(partner(c).ID, &message3{
		SID: c.SSID(),
		XK:  public,
		Z:   proof,
	})
}

// blinding hashes the shared Diffie-Hellman point into a scalar, bound to the session.
func blinding(c *round.Context[*state], shared curve.Point) (curve.Scalar, error) {
	h := c.Hash()
	if err := h.WriteAny(shared); err != nil {
		return nil, err
	}
	return sample.Scalar(h.Digest(), c.Group()), nil
}

package recovery

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

var ErrPublicKeyMismatch = errors.New("recovery: reconstructed public key mismatch")

// round3 receives the public part of the partner, and checks the recovered public share.
type round3 struct {
	msg *message3
}

func (*round3) Number() round.Number { return 3 }

func (*round3) Expects() round.Kind { return round.KindP2P }

func (*round3) Init(*round.Context[*state]) {}

func (r *round3) ParseMessage(c *round.Context[*state], _ int, msg *round.Message) error {
	body := emptyMessage3(c.Group())
	if err := round.Decode(msg.P2P, body); err != nil {
		return err
	}
	if err := body.validate(); err != nil {
		return err
	}
	r.msg = body
	return nil
}

// VerifyMessage checks the proof of knowledge of the partner's part, with nonce T from round 2.
func (r *round3) VerifyMessage(c *round.Context[*state], _ int) error {
	s := c.State()
	body := r.msg
	if !bytes.Equal(body.SID, c.SSID()) {
		return errors.New("wrong session ID")
	}
	commitment := &zksch.Commitment{C: s.peerOpening.T}
	if !body.Z.Verify(c.HashForID(partner(c).ID), body.XK, commitment) {
		return fmt.Errorf("%w: knowledge of the recovered part", ErrProof)
	}
	return nil
}

// Compute reconstructs Xₖ and checks that the public key interpolated from {i, j}
// equals the one interpolated from {i, j, k}.
func (r *round3) Compute(c *round.Context[*state]) error {
	s := c.State()
	group := c.Group()
	self, peer := c.Directory().Self(), partner(c)
	i, j, k := indexTriple(c)

	public := s.share.ActOnBase()
	Xk := public.Add(r.msg.XK)

	viaPair, err := polynomial.Interpolate(group, []curve.Scalar{i, j}, []curve.Point{self.Public, peer.Public})
	if err != nil {
		return err
	}
	viaTriple, err := polynomial.Interpolate(group, []curve.Scalar{i, j, k}, []curve.Point{self.Public, peer.Public, Xk})
	if err != nil {
		return err
	}
	if !viaPair.Equal(viaTriple) || !viaPair.Equal(s.config.PublicKey) {
		return ErrPublicKeyMismatch
	}
	if !Xk.Equal(s.config.PublicShares.Points[s.target]) {
		return errors.New("recovered public share does not match")
	}

	c.SetResult(&Result{
		Target:        s.target,
		TargetIndex:   group.NewScalar().Set(k),
		Share:         group.NewScalar().Set(s.share),
		Public:        public,
		PartnerPublic: r.msg.XK,
		PublicKey:     s.config.PublicKey,
	})
	return nil
}

func (*round3) Finalize(*round.Context[*state], *round.Outbox) error { return nil }

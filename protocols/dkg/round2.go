package dkg

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

// round2 receives the openings and the shares, and proves knowledge of the new share.
type round2 struct {
	openings []*broadcast2
	shares   []*message2
}

func (*round2) Number() round.Number { return 2 }

func (*round2) Expects() round.Kind { return round.KindBoth }

func (r *round2) Init(c *round.Context[*state]) {
	n := c.Directory().RemoteCount()
	r.openings = make([]*broadcast2, n)
	r.shares = make([]*message2, n)
	s := c.State()
	s.openings = make([]*broadcast2, n)
	s.sharesIn = make([]curve.Scalar, n)
}

func (r *round2) ParseMessage(c *round.Context[*state], from int, msg *round.Message) error {
	opening := emptyBroadcast2(c.Group())
	if err := round.Decode(msg.Broadcast, opening); err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	if err := opening.validate(); err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	share := emptyMessage2(c.Group())
	if err := round.Decode(msg.P2P, share); err != nil {
		return fmt.Errorf("share: %w", err)
	}
	if err := share.validate(); err != nil {
		return fmt.Errorf("share: %w", err)
	}
	r.openings[from] = opening
	r.shares[from] = share
	return nil
}

// VerifyMessage checks the opening of the sender against its commitment, its polynomial
// against its public shares, and the share it sent us against our public share.
func (r *round2) VerifyMessage(c *round.Context[*state], from int) error {
	s := c.State()
	sender := c.Directory().Remote(from)
	opening, share := r.openings[from], r.shares[from]
	if !bytes.Equal(opening.SID, c.SSID()) || !bytes.Equal(share.SID, c.SSID()) {
		return errors.New("wrong session ID")
	}
	if !opening.Index.Equal(sender.Index) {
		return errors.New("wrong index")
	}
	if err := opening.RID.Validate(); err != nil {
		return fmt.Errorf("rid: %w", err)
	}
	if err := opening.ChainKey.Validate(); err != nil {
		return fmt.Errorf("chain key: %w", err)
	}
	if err := opening.Decommitment.Validate(); err != nil {
		return fmt.Errorf("decommitment: %w", err)
	}
	if opening.Polynomial.Degree() != c.Threshold()-1 {
		return fmt.Errorf("polynomial has degree %d, expected %d", opening.Polynomial.Degree(), c.Threshold()-1)
	}
	if len(opening.PublicShares.Points) != c.N() || !opening.PublicShares.IDs().Contains(c.PartyIDs()...) {
		return errors.New("public shares do not match the parties")
	}

	if !c.HashForID(sender.ID).Decommit(s.commitments[from], opening.Decommitment, opening.committed()...) {
		return ErrCommitment
	}

	constant := opening.Polynomial.Constant()
	if s.refresh {
		if !opening.X.IsIdentity() || !constant.IsIdentity() {
			return errors.New("non-zero contribution while refreshing")
		}
	} else if opening.X.IsIdentity() || !constant.Equal(opening.X) {
		return errors.New("polynomial constant does not match X")
	}

	for _, p := range c.Directory().Parties() {
		if !opening.Polynomial.Evaluate(p.Index).Equal(opening.PublicShares.Points[p.ID]) {
			return fmt.Errorf("%w: party %s", ErrFeldman, p.ID)
		}
	}

	if !share.Share.ActOnBase().Equal(opening.PublicShares.Points[c.Directory().SelfID()]) {
		return ErrInvalidShare
	}

	s.openings[from] = opening
	s.sharesIn[from] = share.Share
	return nil
}

// Compute derives the joint rid, the new share x' = Σⱼ fⱼ(index_self) (plus the old share
// when refreshing), and the proofs of knowledge of x and x'.
func (r *round2) Compute(c *round.Context[*state]) error {
	s := c.State()
	group := c.Group()
	self := c.Directory().Self()

	s.jointRID = s.opening.RID.Copy()
	for _, opening := range s.openings {
		s.jointRID.XOR(opening.RID)
	}

	share := group.NewScalar().Set(s.sharesOut[self.ID])
	for _, x := range s.sharesIn {
		share.Add(x)
	}
	if s.refresh {
		share.Add(s.previous.PrivateShare)
	}
	if share.IsZero() {
		return errors.New("new share is zero")
	}
	s.share = share

	if !s.refresh {
		s.proofX = zksch.RandomnessFrom(s.tau).Prove(proofHash(c, self.ID, self.Index), s.opening.X, s.secret)
		if s.proofX == nil {
			return errors.New("failed to prove knowledge of the contribution")
		}
	}
	s.proofShare = zksch.RandomnessFrom(s.r).Prove(proofHash(c, self.ID, self.Index), share.ActOnBase(), share)
	if s.proofShare == nil {
		return errors.New("failed to prove knowledge of the new share")
	}
	return nil
}

func (*round2) Finalize(c *round.Context[*state], out *round.Outbox) error {
	s := c.State()
	return out.Broadcast(&broadcast3{
		SID:        c.SSID(),
		Index:      s.opening.Index,
		ProofX:     s.proofX,
		ProofShare: s.proofShare,
	})
}

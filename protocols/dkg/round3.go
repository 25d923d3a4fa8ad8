package dkg

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

var (
	ErrCommitment        = errors.New("dkg: opening does not match commitment")
	ErrFeldman           = errors.New("dkg: public share does not match polynomial")
	ErrInvalidShare      = errors.New("dkg: share does not match public share")
	ErrProof             = errors.New("dkg: failed to verify proof")
	ErrPublicKeyMismatch = errors.New("dkg: reconstructed public key mismatch")
)

// round3 verifies every opening and proof, and computes the output.
type round3 struct {
	msgs []*broadcast3
}

func (*round3) Number() round.Number { return 3 }

func (*round3) Expects() round.Kind { return round.KindBroadcast }

func (r *round3) Init(c *round.Context[*state]) {
	r.msgs = make([]*broadcast3, c.Directory().RemoteCount())
}

func (r *round3) ParseMessage(c *round.Context[*state], from int, msg *round.Message) error {
	body := emptyBroadcast3(c.Group())
	if err := round.Decode(msg.Broadcast, body); err != nil {
		return err
	}
	if err := body.validate(c.State().refresh); err != nil {
		return err
	}
	r.msgs[from] = body
	return nil
}

// VerifyMessage checks the proof of knowledge of X of the sender, against the nonce A
// of its opening.
func (r *round3) VerifyMessage(c *round.Context[*state], from int) error {
	s := c.State()
	sender := c.Directory().Remote(from)
	body := r.msgs[from]
	opening := s.openings[from]

	if !bytes.Equal(body.SID, c.SSID()) {
		return errors.New("wrong session ID")
	}
	if !body.Index.Equal(sender.Index) {
		return errors.New("wrong index")
	}

	if !s.refresh {
		commitment := &zksch.Commitment{C: opening.A}
		if !body.ProofX.Verify(proofHash(c, sender.ID, sender.Index), opening.X, commitment) {
			return fmt.Errorf("%w: knowledge of X", ErrProof)
		}
	}
	return nil
}

// Compute aggregates the public shares Qₗ = Σⱼ Xⱼ→ₗ, verifies the proofs of knowledge of the
// new shares, and checks that interpolating all Qₗ yields the public key.
func (r *round3) Compute(c *round.Context[*state]) error {
	s := c.State()
	group := c.Group()
	directory := c.Directory()
	self := directory.Self()

	openings := make(map[party.ID]*broadcast2, c.N())
	openings[self.ID] = s.opening
	for pos, opening := range s.openings {
		openings[directory.Remote(pos).ID] = opening
	}

	publicShares := make(map[party.ID]curve.Point, c.N())
	publicKey := group.NewPoint()
	for _, p := range directory.Parties() {
		Q := group.NewPoint()
		if s.refresh {
			Q = s.previous.PublicShares.Points[p.ID]
		}
		for _, opening := range openings {
			Q = Q.Add(opening.PublicShares.Points[p.ID])
		}
		publicShares[p.ID] = Q
		publicKey = publicKey.Add(openings[p.ID].X)
	}

	if !publicShares[self.ID].Equal(s.share.ActOnBase()) {
		return fmt.Errorf("%w: own public share", ErrInvalidShare)
	}

	hashes := make([]*hash.Hash, len(r.msgs))
	for pos := range r.msgs {
		sender := directory.Remote(pos)
		hashes[pos] = proofHash(c, sender.ID, sender.Index)
	}
	verified := c.Pool().Parallelize(len(r.msgs), func(pos int) interface{} {
		commitment := &zksch.Commitment{C: s.openings[pos].B}
		return r.msgs[pos].ProofShare.Verify(hashes[pos], publicShares[directory.Remote(pos).ID], commitment)
	})
	for pos, ok := range verified {
		if !ok.(bool) {
			return round.Verification(directory.Remote(pos).ID, fmt.Errorf("%w: knowledge of the new share", ErrProof))
		}
	}

	if s.refresh {
		if !publicKey.IsIdentity() {
			return errors.New("refresh changed the public key")
		}
		publicKey = s.previous.PublicKey
	}

	parties := directory.Parties()
	points := make([]curve.Point, len(parties))
	for i, p := range parties {
		points[i] = publicShares[p.ID]
	}
	reconstructed, err := polynomial.Interpolate(group, directory.Indices(), points)
	if err != nil {
		return err
	}
	if !reconstructed.Equal(publicKey) {
		return ErrPublicKeyMismatch
	}

	chainKey := s.opening.ChainKey.Copy()
	for _, opening := range s.openings {
		chainKey.XOR(opening.ChainKey)
	}
	if s.refresh {
		chainKey = s.previous.ChainKey.Copy()
	}

	indices := make(map[party.ID]curve.Scalar, len(parties))
	for _, p := range parties {
		indices[p.ID] = group.NewScalar().Set(p.Index)
	}

	directory.SetSecret(s.share)
	for _, p := range parties {
		if err := directory.SetPublic(p.ID, publicShares[p.ID]); err != nil {
			return err
		}
	}

	c.SetResult(&Config{
		ID:           self.ID,
		Threshold:    c.Threshold(),
		Index:        group.NewScalar().Set(self.Index),
		PrivateShare: group.NewScalar().Set(s.share),
		PublicKey:    publicKey,
		RID:          s.jointRID.Copy(),
		ChainKey:     chainKey,
		Indices:      indices,
		PublicShares: party.NewPointMap(publicShares),
	})
	return nil
}

func (*round3) Finalize(*round.Context[*state], *round.Outbox) error { return nil }

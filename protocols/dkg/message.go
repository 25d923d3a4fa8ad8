package dkg

import (
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

// broadcast1 commits to the content of broadcast2.
type broadcast1 struct {
	SID   []byte
	Index curve.Scalar
	// Commitment = H(opening, Decommitment)
	Commitment hash.Commitment
}

// broadcast2 opens the commitment of broadcast1.
type broadcast2 struct {
	SID   []byte
	Index curve.Scalar
	// RID is the contribution to the joint rid.
	RID types.RID
	// ChainKey is the contribution to the joint chain key.
	ChainKey types.RID
	// X = g⋅x is the public contribution to the joint key, the identity when refreshing.
	X curve.Point
	// A = g⋅τ is the nonce of the proof of knowledge of x.
	A curve.Point
	// B = g⋅r is the nonce of the proof of knowledge of the new share.
	B curve.Point
	// Polynomial holds the Feldman commitments to the coefficients of the sharing polynomial.
	Polynomial *polynomial.Exponent
	// PublicShares[l] = g⋅f(index_l) for every party l.
	PublicShares *party.PointMap
	Decommitment hash.Decommitment
}

// message2 carries the share f(index_l) to party l.
type message2 struct {
	SID   []byte
	Share curve.Scalar
}

// broadcast3 proves knowledge of x and of the new share.
type broadcast3 struct {
	SID   []byte
	Index curve.Scalar
	// ProofX is nil when refreshing.
	ProofX     *zksch.Response
	ProofShare *zksch.Response
}

func emptyBroadcast1(group curve.Curve) *broadcast1 {
	return &broadcast1{Index: group.NewScalar()}
}

func emptyBroadcast2(group curve.Curve) *broadcast2 {
	return &broadcast2{
		Index:        group.NewScalar(),
		X:            group.NewPoint(),
		A:            group.NewPoint(),
		B:            group.NewPoint(),
		Polynomial:   polynomial.EmptyExponent(group),
		PublicShares: party.EmptyPointMap(group),
	}
}

func emptyMessage2(group curve.Curve) *message2 {
	return &message2{Share: group.NewScalar()}
}

func emptyBroadcast3(group curve.Curve) *broadcast3 {
	return &broadcast3{
		Index:      group.NewScalar(),
		ProofX:     zksch.EmptyResponse(group),
		ProofShare: zksch.EmptyResponse(group),
	}
}

func (b *broadcast1) validate() error {
	if b.Index == nil {
		return round.ErrNilFields
	}
	return nil
}

func (b *broadcast2) validate() error {
	if b.Index == nil || b.X == nil || b.A == nil || b.B == nil {
		return round.ErrNilFields
	}
	if b.Polynomial == nil || b.PublicShares == nil || b.PublicShares.Points == nil {
		return round.ErrNilFields
	}
	for _, p := range b.PublicShares.Points {
		if p == nil {
			return round.ErrNilFields
		}
	}
	return nil
}

func (m *message2) validate() error {
	if m.Share == nil {
		return round.ErrNilFields
	}
	return nil
}

// validate requires ProofX unless refreshing, in which case it is ignored.
func (b *broadcast3) validate(refresh bool) error {
	if b.Index == nil || b.ProofShare == nil || b.ProofShare.Z == nil {
		return round.ErrNilFields
	}
	if !refresh && (b.ProofX == nil || b.ProofX.Z == nil) {
		return round.ErrNilFields
	}
	return nil
}

// committed returns the values bound by the commitment of broadcast1.
func (b *broadcast2) committed() []interface{} {
	return []interface{}{b.SID, b.Index, b.RID, b.ChainKey, b.X, b.A, b.B, b.Polynomial, b.PublicShares}
}

func (b *broadcast2) clone() *broadcast2 {
	if b == nil {
		return nil
	}
	out := *b
	out.SID = append([]byte(nil), b.SID...)
	out.Index = copyScalar(b.Index)
	out.RID = b.RID.Copy()
	out.ChainKey = b.ChainKey.Copy()
	out.PublicShares = b.PublicShares.Copy()
	out.Decommitment = append(hash.Decommitment(nil), b.Decommitment...)
	return &out
}

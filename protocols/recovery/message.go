package recovery

import (
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

// message1 commits to the content of message2.
type message1 struct {
	SID        []byte
	Commitment hash.Commitment
}

// message2 opens the commitment of message1.
type message2 struct {
	SID []byte
	// X is the public share of the sender.
	X curve.Point
	// I, J and K are the indices of the sender, the receiver and the target.
	I, J, K curve.Scalar
	// A = g⋅a is the Diffie-Hellman contribution.
	A curve.Point
	// R = g⋅r is the nonce of Phi.
	R curve.Point
	// T = g⋅t is the nonce of the proof of the recovered part, sent in the next round.
	T curve.Point
	// Phi proves knowledge of the discrete logarithm of X.
	Phi          *zksch.Response
	Decommitment hash.Decommitment
}

// message3 carries the public part of the recovered share, with a proof of knowledge.
type message3 struct {
	SID []byte
	XK  curve.Point
	Z   *zksch.Response
}

func emptyMessage2(group curve.Curve) *message2 {
	return &message2{
		X:   group.NewPoint(),
		I:   group.NewScalar(),
		J:   group.NewScalar(),
		K:   group.NewScalar(),
		A:   group.NewPoint(),
		R:   group.NewPoint(),
		T:   group.NewPoint(),
		Phi: zksch.EmptyResponse(group),
	}
}

func emptyMessage3(group curve.Curve) *message3 {
	return &message3{
		XK: group.NewPoint(),
		Z:  zksch.EmptyResponse(group),
	}
}

func (m *message2) validate() error {
	if m.X == nil || m.I == nil || m.J == nil || m.K == nil {
		return round.ErrNilFields
	}
	if m.A == nil || m.R == nil || m.T == nil || m.Phi == nil || m.Phi.Z == nil {
		return round.ErrNilFields
	}
	return nil
}

func (m *message3) validate() error {
	if m.XK == nil || m.Z == nil || m.Z.Z == nil {
		return round.ErrNilFields
	}
	return nil
}

// committed returns the values bound by the commitment of message1.
func (m *message2) committed() []interface{} {
	return []interface{}{m.X, m.I, m.J, m.K, m.A, m.R, m.T, m.Phi.Z}
}

func (m *message2) clone() *message2 {
	if m == nil {
		return nil
	}
	out := *m
	out.SID = append([]byte(nil), m.SID...)
	out.I = copyScalar(m.I)
	out.J = copyScalar(m.J)
	out.K = copyScalar(m.K)
	out.Decommitment = append(hash.Decommitment(nil), m.Decommitment...)
	return &out
}

package recovery

import (
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/protocols/dkg"
)

type state struct {
	config      *dkg.Config
	target      party.ID
	targetIndex curve.Scalar

	// a, r and t are the secrets behind A, R and T.
	a, r, t curve.Scalar

	opening        *message2
	commitment     hash.Commitment
	peerCommitment hash.Commitment
	peerOpening    *message2

	// share = λᵢ(k)⋅xᵢ ± Δ
	share curve.Scalar
}

func copyScalar(s curve.Scalar) curve.Scalar {
	if s == nil {
		return nil
	}
	return s.Curve().NewScalar().Set(s)
}

// Clone implements round.State.
func (s *state) Clone() *state {
	return &state{
		config:         s.config.Copy(),
		target:         s.target,
		targetIndex:    copyScalar(s.targetIndex),
		a:              copyScalar(s.a),
		r:              copyScalar(s.r),
		t:              copyScalar(s.t),
		opening:        s.opening.clone(),
		commitment:     append(hash.Commitment(nil), s.commitment...),
		peerCommitment: append(hash.Commitment(nil), s.peerCommitment...),
		peerOpening:    s.peerOpening.clone(),
		share:          copyScalar(s.share),
	}
}

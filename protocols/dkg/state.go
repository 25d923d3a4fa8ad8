package dkg

import (
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	zksch "github.com/taurusgroup/threshold-ecdsa/pkg/zk/sch"
)

// state is carried by the Context from one round of the DKG to the next.
// Slices indexed by position follow the order of the remote parties in the directory.
type state struct {
	refresh  bool
	previous *Config

	// secret is the constant of our polynomial, zero when refreshing.
	secret curve.Scalar
	// tau and r are the Schnorr nonces behind A and B.
	tau, r curve.Scalar
	// sharesOut[l] = f(index_l), for every party l including ourselves.
	sharesOut map[party.ID]curve.Scalar
	// opening is our own broadcast of round 2, kept for the final computation.
	opening        *broadcast2
	selfCommitment hash.Commitment

	commitments []hash.Commitment
	openings    []*broadcast2
	sharesIn    []curve.Scalar

	jointRID   types.RID
	share      curve.Scalar
	proofX     *zksch.Response
	proofShare *zksch.Response
}

func copyScalar(s curve.Scalar) curve.Scalar {
	if s == nil {
		return nil
	}
	return s.Curve().NewScalar().Set(s)
}

// Clone implements round.State.
// Points, polynomials in the exponent and proofs are never modified once created, and are shared.
func (s *state) Clone() *state {
	out := &state{
		refresh:        s.refresh,
		secret:         copyScalar(s.secret),
		tau:            copyScalar(s.tau),
		r:              copyScalar(s.r),
		opening:        s.opening.clone(),
		selfCommitment: append(hash.Commitment(nil), s.selfCommitment...),
		share:          copyScalar(s.share),
		proofX:         s.proofX,
		proofShare:     s.proofShare,
	}
	if s.previous != nil {
		out.previous = s.previous.Copy()
	}
	if s.sharesOut != nil {
		out.sharesOut = make(map[party.ID]curve.Scalar, len(s.sharesOut))
		for id, x := range s.sharesOut {
			out.sharesOut[id] = copyScalar(x)
		}
	}
	if s.commitments != nil {
		out.commitments = make([]hash.Commitment, len(s.commitments))
		for i, c := range s.commitments {
			out.commitments[i] = append(hash.Commitment(nil), c...)
		}
	}
	if s.openings != nil {
		out.openings = make([]*broadcast2, len(s.openings))
		for i, o := range s.openings {
			out.openings[i] = o.clone()
		}
	}
	if s.sharesIn != nil {
		out.sharesIn = make([]curve.Scalar, len(s.sharesIn))
		for i, x := range s.sharesIn {
			out.sharesIn[i] = copyScalar(x)
		}
	}
	if s.jointRID != nil {
		out.jointRID = s.jointRID.Copy()
	}
	return out
}

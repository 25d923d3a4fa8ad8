package recovery

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/protocols/dkg"
)

// Result is the output of a recovery run for one of the two live parties.
type Result struct {
	// Target is the party whose share is recovered.
	Target      party.ID
	TargetIndex curve.Scalar
	// Share is this party's part of the lost share. It must only be given to the target.
	Share curve.Scalar
	// Public = g⋅Share.
	Public curve.Point
	// PartnerPublic is the public part of the other live party.
	PartnerPublic curve.Point
	PublicKey     curve.Point
}

// Combine adds the parts of the two live parties, and returns the lost share xₖ.
func Combine(a, b *Result) (curve.Scalar, error) {
	if a == nil || b == nil {
		return nil, errors.New("recovery.Combine: nil result")
	}
	if a.Target != b.Target || !a.TargetIndex.Equal(b.TargetIndex) || !a.PublicKey.Equal(b.PublicKey) {
		return nil, errors.New("recovery.Combine: results are from different runs")
	}
	if !a.Public.Equal(b.PartnerPublic) || !b.Public.Equal(a.PartnerPublic) {
		return nil, errors.New("recovery.Combine: results are from different runs")
	}
	if !a.Share.ActOnBase().Equal(a.Public) || !b.Share.ActOnBase().Equal(b.Public) {
		return nil, errors.New("recovery.Combine: share does not match its public part")
	}
	group := a.Share.Curve()
	return group.NewScalar().Set(a.Share).Add(b.Share), nil
}

// Restore rebuilds the dkg.Config of the target from the config of a live party
// and the recovered share.
func Restore(c *dkg.Config, target party.ID, share curve.Scalar) (*dkg.Config, error) {
	index, ok := c.Indices[target]
	if !ok {
		return nil, fmt.Errorf("recovery.Restore: target %s: %w", target, party.ErrUnknownID)
	}
	restored := c.Copy()
	restored.ID = target
	restored.Index = restored.Curve().NewScalar().Set(index)
	restored.PrivateShare = restored.Curve().NewScalar().Set(share)
	if err := restored.Validate(); err != nil {
		return nil, fmt.Errorf("recovery.Restore: %w", err)
	}
	return restored, nil
}

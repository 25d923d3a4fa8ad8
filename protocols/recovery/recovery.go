// Package recovery lets two live parties of a threshold-2 key recover the share of a third party.
//
// Each live party i computes a Lagrange-weighted part of the lost share xₖ, blinded by a value Δ
// derived from a Diffie-Hellman exchange with its partner j, such that
//
//	xₖ = (λᵢ(k)⋅xᵢ ± Δ) + (λⱼ(k)⋅xⱼ ∓ Δ)
//
// Neither part reveals anything about xᵢ or xⱼ. The parts are combined by the recovering party.
package recovery

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
	"github.com/taurusgroup/threshold-ecdsa/protocols/dkg"
)

const protocolID = "recovery/3-party"

// These assert that our rounds implement the round.Round interface.
var (
	_ round.Round[*state] = (*round0)(nil)
	_ round.Round[*state] = (*round1)(nil)
	_ round.Round[*state] = (*round2)(nil)
	_ round.Round[*state] = (*round3)(nil)
)

// Start returns a protocol.StartFunc for the live party holding c, recovering the share of target
// together with partner.
// The output of the protocol is a *Result.
func Start(c *dkg.Config, partner, target party.ID, sessionID []byte) protocol.StartFunc {
	return func() (round.Driver, error) {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("recovery.Start: %w", err)
		}
		if c.Threshold != 2 {
			return nil, fmt.Errorf("recovery.Start: threshold is %d, recovery requires 2", c.Threshold)
		}
		if partner == c.ID || target == c.ID || partner == target {
			return nil, errors.New("recovery.Start: self, partner and target must be distinct")
		}
		targetIndex, ok := c.Indices[target]
		if !ok {
			return nil, fmt.Errorf("recovery.Start: target %s: %w", target, party.ErrUnknownID)
		}
		partnerIndex, ok := c.Indices[partner]
		if !ok {
			return nil, fmt.Errorf("recovery.Start: partner %s: %w", partner, party.ErrUnknownID)
		}

		directory, err := party.NewDirectory(c.ID, []party.Party{
			{ID: c.ID, Index: c.Index, Public: c.PublicShares.Points[c.ID]},
			{ID: partner, Index: partnerIndex, Public: c.PublicShares.Points[partner]},
		})
		if err != nil {
			return nil, fmt.Errorf("recovery.Start: %w", err)
		}
		directory.SetSecret(c.PrivateShare)

		publicKey, err := c.PublicKey.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("recovery.Start: %w", err)
		}
		group := c.Curve()
		info := round.Info{
			ProtocolID: protocolID,
			Config: party.SessionConfig{
				Group:     group,
				Threshold: c.Threshold,
				SessionID: sessionID,
			},
		}
		ctx, err := round.New(info, directory, &state{
			config:      c.Copy(),
			target:      target,
			targetIndex: group.NewScalar().Set(targetIndex),
		}, target, &hash.BytesWithDomain{TheDomain: "Public Key", Bytes: publicKey})
		if err != nil {
			return nil, fmt.Errorf("recovery.Start: %w", err)
		}
		if err = ctx.BindRounds(
			func() round.Round[*state] { return &round0{} },
			func() round.Round[*state] { return &round1{} },
			func() round.Round[*state] { return &round2{} },
			func() round.Round[*state] { return &round3{} },
		); err != nil {
			return nil, fmt.Errorf("recovery.Start: %w", err)
		}
		return ctx, nil
	}
}

// partner returns the only remote party of the session.
func partner(c *round.Context[*state]) party.Party {
	return c.Directory().Remote(0)
}

// indexTriple returns the indices (i, j, k) of self, partner and target.
func indexTriple(c *round.Context[*state]) (curve.Scalar, curve.Scalar, curve.Scalar) {
	return c.Directory().Self().Index, partner(c).Index, c.State().targetIndex
}

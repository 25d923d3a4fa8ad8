// Package dkg implements threshold distributed key generation with commit-then-reveal Feldman VSS,
// and the refresh of the shares it produces.
//
// Every party samples a random polynomial of degree t-1 and commits to it together with its
// public shares and Schnorr nonces. Once all commitments are collected, the openings and the
// secret shares are exchanged, and every party proves knowledge of its new share.
// The last round checks every opening against its commitment and reconstructs the public key.
package dkg

import (
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
)

const (
	protocolID        = "dkg/threshold"
	protocolIDRefresh = "dkg/refresh"
)

// These assert that our rounds implement the round.Round interface.
var (
	_ round.Round[*state] = (*round0)(nil)
	_ round.Round[*state] = (*round1)(nil)
	_ round.Round[*state] = (*round2)(nil)
	_ round.Round[*state] = (*round3)(nil)
)

// Start returns a protocol.StartFunc for a fresh key generation between parties.
//
// secret is the contribution of the local party to the joint secret.
// If it is nil, a random contribution is sampled.
// The output of the protocol is a *Config.
func Start(cfg party.SessionConfig, selfID party.ID, parties []party.Party, secret curve.Scalar) protocol.StartFunc {
	return func() (round.Driver, error) {
		if secret != nil && secret.IsZero() {
			return nil, errors.New("dkg.Start: secret contribution is zero")
		}
		directory, err := party.NewDirectory(selfID, parties)
		if err != nil {
			return nil, fmt.Errorf("dkg.Start: %w", err)
		}
		s := &state{}
		if secret != nil {
			s.secret = secret.Curve().NewScalar().Set(secret)
		}
		c, err := newContext(protocolID, cfg, directory, s)
		if err != nil {
			return nil, fmt.Errorf("dkg.Start: %w", err)
		}
		return c, nil
	}
}

// StartRefresh returns a protocol.StartFunc which re-randomizes the shares of c,
// keeping the public key, the threshold and the set of parties.
// The output of the protocol is the new *Config.
func StartRefresh(c *Config, sessionID []byte) protocol.StartFunc {
	return func() (round.Driver, error) {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("dkg.StartRefresh: %w", err)
		}
		directory, err := party.NewDirectory(c.ID, c.Parties())
		if err != nil {
			return nil, fmt.Errorf("dkg.StartRefresh: %w", err)
		}
		directory.SetSecret(c.PrivateShare)

		publicKey, err := c.PublicKey.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("dkg.StartRefresh: %w", err)
		}
		cfg := party.SessionConfig{
			Group:     c.Curve(),
			Threshold: c.Threshold,
			SessionID: sessionID,
		}
		ctx, err := newContext(protocolIDRefresh, cfg, directory, &state{
			refresh:  true,
			previous: c.Copy(),
		}, &hash.BytesWithDomain{TheDomain: "Public Key", Bytes: publicKey})
		if err != nil {
			return nil, fmt.Errorf("dkg.StartRefresh: %w", err)
		}
		return ctx, nil
	}
}

func newContext(id string, cfg party.SessionConfig, directory *party.Directory, s *state, auxInfo ...hash.WriterToWithDomain) (*round.Context[*state], error) {
	c, err := round.New(round.Info{ProtocolID: id, Config: cfg}, directory, s, auxInfo...)
	if err != nil {
		return nil, err
	}
	if err = c.BindRounds(
		func() round.Round[*state] { return &round0{} },
		func() round.Round[*state] { return &round1{} },
		func() round.Round[*state] { return &round2{} },
		func() round.Round[*state] { return &round3{} },
	); err != nil {
		return nil, err
	}
	return c, nil
}

// proofHash returns the hash used for the Schnorr proofs of party id,
// salted with its index and the joint rid.
func proofHash(c *round.Context[*state], id party.ID, index curve.Scalar) *hash.Hash {
	h := c.HashForID(id)
	_ = h.WriteAny(index, c.State().jointRID)
	return h
}

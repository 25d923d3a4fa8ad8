package dkg

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/taurusgroup/threshold-ecdsa/internal/bip32"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"golang.org/x/crypto/sha3"
)

// Config contains all the information produced after key generation, from the perspective
// of a single participant.
type Config struct {
	// ID is the identifier for this participant.
	ID party.ID
	// Threshold is the number of shares needed to reconstruct the secret key.
	Threshold int
	// Index is the Shamir index of this participant.
	Index curve.Scalar
	// PrivateShare is the fraction of the secret key owned by this participant.
	PrivateShare curve.Scalar
	// PublicKey is the shared public key for this consortium of signers.
	PublicKey curve.Point
	// RID is the random identifier agreed upon during the protocol.
	RID types.RID
	// ChainKey is the additional randomness we've agreed upon.
	//
	// This is only ever useful if you do BIP-32 key derivation, or something similar.
	ChainKey types.RID
	// Indices maps every participant to its Shamir index.
	Indices map[party.ID]curve.Scalar
	// PublicShares maps every participant to the commitment g⋅xₗ to its private share.
	PublicShares *party.PointMap
}

// Curve returns the Elliptic Curve Group associated with this config.
func (c *Config) Curve() curve.Curve {
	return c.PublicKey.Curve()
}

// PartyIDs returns a sorted slice of the participants.
func (c *Config) PartyIDs() party.IDSlice {
	ids := make([]party.ID, 0, len(c.Indices))
	for id := range c.Indices {
		ids = append(ids, id)
	}
	return party.NewIDSlice(ids)
}

// Parties returns every participant with its index and public share.
func (c *Config) Parties() []party.Party {
	ids := c.PartyIDs()
	parties := make([]party.Party, len(ids))
	for i, id := range ids {
		parties[i] = party.Party{
			ID:     id,
			Index:  c.Indices[id],
			Public: c.PublicShares.Points[id],
		}
	}
	return parties
}

// PublicPoint returns g⋅PrivateShare.
func (c *Config) PublicPoint() curve.Point {
	return c.PrivateShare.ActOnBase()
}

// Validate ensures that the data is consistent: the private share matches its public share,
// and any Threshold public shares interpolate to the public key.
func (c *Config) Validate() error {
	if c.PublicKey == nil || c.PublicKey.IsIdentity() {
		return errors.New("config: public key is missing")
	}
	if c.PrivateShare == nil || c.PrivateShare.IsZero() {
		return errors.New("config: private share is zero")
	}
	if c.PublicShares == nil {
		return errors.New("config: public shares are missing")
	}
	n := len(c.Indices)
	if c.Threshold < 2 || c.Threshold > n {
		return fmt.Errorf("config: threshold %d is invalid for number of parties %d", c.Threshold, n)
	}
	if len(c.RID) != params.SecBytes || len(c.ChainKey) != params.SecBytes {
		return errors.New("config: rid or chain key has wrong length")
	}
	index, ok := c.Indices[c.ID]
	if !ok || c.Index == nil || !index.Equal(c.Index) {
		return errors.New("config: own index does not match")
	}

	parties := c.Parties()
	domain := make([]curve.Scalar, 0, n)
	points := make([]curve.Point, 0, n)
	for _, p := range parties {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("config: party %s: %w", p.ID, err)
		}
		if p.Public == nil {
			return fmt.Errorf("config: party %s: missing public share", p.ID)
		}
		domain = append(domain, p.Index)
		points = append(points, p.Public)
	}
	if !c.PublicShares.Points[c.ID].Equal(c.PublicPoint()) {
		return errors.New("config: private share does not match public share")
	}

	// interpolating over the first Threshold parties, and over all of them, must give the same key
	for _, k := range []int{c.Threshold, n} {
		reconstructed, err := polynomial.Interpolate(c.Curve(), domain[:k], points[:k])
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if !reconstructed.Equal(c.PublicKey) {
			return errors.New("config: public shares do not match public key")
		}
	}
	return nil
}

// Copy returns a deep copy of c.
func (c *Config) Copy() *Config {
	group := c.Curve()
	indices := make(map[party.ID]curve.Scalar, len(c.Indices))
	for id, index := range c.Indices {
		indices[id] = group.NewScalar().Set(index)
	}
	return &Config{
		ID:           c.ID,
		Threshold:    c.Threshold,
		Index:        group.NewScalar().Set(c.Index),
		PrivateShare: group.NewScalar().Set(c.PrivateShare),
		PublicKey:    group.NewPoint().Set(c.PublicKey),
		RID:          c.RID.Copy(),
		ChainKey:     c.ChainKey.Copy(),
		Indices:      indices,
		PublicShares: c.PublicShares.Copy(),
	}
}

// Derive performs an arbitrary derivation of a related key, by adding a scalar.
//
// This can support methods like BIP32, but is more general.
//
// Optionally, a new chain key can be passed as well.
func (c *Config) Derive(adjust curve.Scalar, newChainKey []byte) (*Config, error) {
	if len(newChainKey) == 0 {
		newChainKey = c.ChainKey
	}
	if len(newChainKey) != params.SecBytes {
		return nil, fmt.Errorf("config: expected %d bytes for chain key, found %d", params.SecBytes, len(newChainKey))
	}

	adjustG := adjust.ActOnBase()
	out := c.Copy()
	out.PrivateShare.Add(adjust)
	out.PublicKey = out.PublicKey.Add(adjustG)
	for id, X := range out.PublicShares.Points {
		out.PublicShares.Points[id] = X.Add(adjustG)
	}
	out.ChainKey = types.RID(newChainKey).Copy()
	return out, nil
}

// DeriveChild adjusts the shares to represent the derived public key at a certain non-hardened index.
//
// This derivation works according to BIP-32, see:
// https://github.com/bitcoin/bips/blob/master/bip-0032.mediawiki
func (c *Config) DeriveChild(i uint32) (*Config, error) {
	scalar, newChainKey, err := bip32.DeriveScalar(c.PublicKey, c.ChainKey, i)
	if err != nil {
		return nil, err
	}
	return c.Derive(scalar, newChainKey)
}

// DerivePath applies DeriveChild for every index of a path such as "m/0/1".
func (c *Config) DerivePath(path string) (*Config, error) {
	p, err := bip32.PathFrom(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	scalar, newChainKey, err := bip32.DerivePath(c.PublicKey, c.ChainKey, p)
	if err != nil {
		return nil, err
	}
	return c.Derive(scalar, newChainKey)
}

// Address returns the EIP-55 checksummed Ethereum address of the public key.
func (c *Config) Address() (string, error) {
	compressed, err := c.PublicKey.MarshalBinary()
	if err != nil {
		return "", err
	}
	pk, err := secp256k1.ParsePubKey(compressed)
	if err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	digest := keccak256(pk.SerializeUncompressed()[1:])
	lower := hex.EncodeToString(digest[12:])

	checksum := hex.EncodeToString(keccak256([]byte(lower)))
	var b strings.Builder
	b.WriteString("0x")
	for i, ch := range lower {
		if ch >= 'a' && checksum[i] >= '8' {
			b.WriteRune(ch - 'a' + 'A')
		} else {
			b.WriteRune(ch)
		}
	}
	return b.String(), nil
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(data)
	return h.Sum(nil)
}

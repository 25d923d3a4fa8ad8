package hash

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/taurusgroup/threshold-ecdsa/internal/params"
)

type (
	// Commitment binds a party to a list of values before it reveals them.
	Commitment []byte
	// Decommitment is the random nonce revealed along with the committed values.
	Decommitment []byte
)

func (c Commitment) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(c)
	return int64(n), err
}

func (Commitment) Domain() string { return "Commitment" }

// Validate checks that c has the length of a digest.
func (c Commitment) Validate() error {
	if len(c) != DigestLengthBytes {
		return fmt.Errorf("commitment: got %d bytes, expected %d", len(c), DigestLengthBytes)
	}
	return nil
}

func (c Commitment) String() string { return hex.EncodeToString(c) }

func (d Decommitment) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(d)
	return int64(n), err
}

func (Decommitment) Domain() string { return "Decommitment" }

// Validate checks that d has the length of the security parameter.
func (d Decommitment) Validate() error {
	if len(d) != params.SecBytes {
		return fmt.Errorf("decommitment: got %d bytes, expected %d", len(d), params.SecBytes)
	}
	return nil
}

// digest returns H(data..., d) over a copy of the hash state.
func (hash *Hash) digest(d Decommitment, data []interface{}) ([]byte, error) {
	h := hash.Clone()
	for i, item := range data {
		if err := h.WriteAny(item); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	if err := h.WriteAny(d); err != nil {
		return nil, err
	}
	return h.Sum(), nil
}

// Commit samples a decommitment u and returns V = H(data..., u) along with u.
// The receiver is not modified.
func (hash *Hash) Commit(data ...interface{}) (Commitment, Decommitment, error) {
	d := make(Decommitment, params.SecBytes)
	if _, err := io.ReadFull(rand.Reader, d); err != nil {
		return nil, nil, fmt.Errorf("hash.Commit: sample decommitment: %w", err)
	}
	c, err := hash.digest(d, data)
	if err != nil {
		return nil, nil, fmt.Errorf("hash.Commit: %w", err)
	}
	return c, d, nil
}

// Decommit reports whether c = H(data..., d).
// Malformed commitments and decommitments are rejected before hashing.
func (hash *Hash) Decommit(c Commitment, d Decommitment, data ...interface{}) bool {
	if c.Validate() != nil || d.Validate() != nil {
		return false
	}
	computed, err := hash.digest(d, data)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(computed, c) == 1
}

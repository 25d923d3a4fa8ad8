// Package types holds the fixed-size random strings contributed by every party of a DKG.
package types

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/taurusgroup/threshold-ecdsa/internal/params"
)

var ErrZeroRID = errors.New("rid: all bytes are zero")

// RID is a random string of params.SecBytes bytes.
// The contributions of all parties are XOR'ed into a joint value: the session rid, or the chain key.
type RID []byte

// EmptyRID returns the all-zero RID, which XOR leaves unchanged.
func EmptyRID() RID {
	return make(RID, params.SecBytes)
}

// NewRID samples a RID from rand.
func NewRID(rand io.Reader) (RID, error) {
	rid := EmptyRID()
	if _, err := io.ReadFull(rand, rid); err != nil {
		return nil, fmt.Errorf("rid: %w", err)
	}
	return rid, nil
}

// XOR sets rid to rid ⊕ other, over the bytes both share.
func (rid RID) XOR(other RID) {
	subtle.XORBytes(rid, rid, other)
}

// Validate checks that rid is a contribution: params.SecBytes bytes, not all zero.
func (rid RID) Validate() error {
	if len(rid) != params.SecBytes {
		return fmt.Errorf("rid: got %d bytes, expected %d", len(rid), params.SecBytes)
	}
	if subtle.ConstantTimeCompare(rid, EmptyRID()) == 1 {
		return ErrZeroRID
	}
	return nil
}

// Copy returns an independent RID of params.SecBytes bytes with the content of rid.
func (rid RID) Copy() RID {
	out := EmptyRID()
	copy(out, rid)
	return out
}

// WriteTo implements io.WriterTo.
func (rid RID) WriteTo(w io.Writer) (int64, error) {
	if rid == nil {
		return 0, io.ErrUnexpectedEOF
	}
	n, err := w.Write(rid)
	return int64(n), err
}

// Domain implements hash.WriterToWithDomain.
func (RID) Domain() string { return "RID" }

func (rid RID) String() string { return hex.EncodeToString(rid) }

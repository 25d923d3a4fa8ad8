package bip32

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cronokirby/saferith"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

// ChainKeyLength is the length in bytes of a chaining value.
const ChainKeyLength = 32

var ErrHardened = errors.New("bip32: hardened derivation requires the private key")

const hardenedBit = uint32(1) << 31

// scalarFrom interprets b as a big-endian integer, and fails if it is not reduced modulo the group order.
func scalarFrom(group curve.Curve, b []byte) (curve.Scalar, bool) {
	n := new(saferith.Nat).SetBytes(b)
	if _, _, lt := n.CmpMod(group.Order()); lt != 1 {
		return nil, false
	}
	return group.NewScalar().SetNat(n), true
}

// DeriveMaster derives the master secret and chaining value from a seed.
func DeriveMaster(group curve.Curve, seed []byte) (curve.Scalar, []byte, error) {
	h := hmac.New(sha512.New, []byte("Bitcoin seed"))
	_, _ = h.Write(seed)
	out := h.Sum(nil)
	secret, ok := scalarFrom(group, out[:32])
	if !ok || secret.IsZero() {
		return nil, nil, errors.New("bip32: invalid seed")
	}
	return secret, out[32:], nil
}

// DeriveScalar uses a public point, chaining value, and index, to derive a scalar and chaining value.
//
// This scalar should be added to the secret key.
//
// If an error is returned, this means that this index will not be useable, and another
// index should be used instead.
//
// See: https://github.com/bitcoin/bips/blob/master/bip-0032.mediawiki
func DeriveScalar(public curve.Point, chaining []byte, i uint32) (curve.Scalar, []byte, error) {
	if i&hardenedBit != 0 {
		return nil, nil, ErrHardened
	}
	if len(chaining) != ChainKeyLength {
		return nil, nil, fmt.Errorf("bip32: chain key has length %d, expected %d", len(chaining), ChainKeyLength)
	}
	compressed, err := public.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}

	h := hmac.New(sha512.New, chaining)
	_, _ = h.Write(compressed)
	iBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(iBytes, i)
	_, _ = h.Write(iBytes)

	out := h.Sum(nil)
	scalar, ok := scalarFrom(public.Curve(), out[:32])
	if !ok {
		return nil, nil, fmt.Errorf("bip32: bad index: %d", i)
	}
	if scalar.ActOnBase().Add(public).IsIdentity() {
		return nil, nil, fmt.Errorf("bip32: bad index: %d", i)
	}

	return scalar, out[32:], nil
}

// DerivePath applies DeriveScalar for every index of path, starting from public.
// It returns the sum of the derived scalars and the final chaining value.
func DerivePath(public curve.Point, chaining []byte, path Path) (curve.Scalar, []byte, error) {
	group := public.Curve()
	total := group.NewScalar()
	for _, i := range path.indices {
		scalar, next, err := DeriveScalar(public, chaining, i)
		if err != nil {
			return nil, nil, err
		}
		total.Add(scalar)
		public = scalar.ActOnBase().Add(public)
		chaining = next
	}
	return total, chaining, nil
}

package curve

import (
	"bytes"
	"encoding"

	"github.com/cronokirby/saferith"
)

// Curve represents the prime order group on which the protocols operate.
type Curve interface {
	// NewPoint returns the identity element of the group.
	NewPoint() Point
	// NewBasePoint returns the generator g.
	NewBasePoint() Point
	// NewScalar returns the scalar 0.
	NewScalar() Scalar
	// Name returns a string identifying the curve, used for domain separation.
	Name() string
	// ScalarBits returns the bit length of the group order.
	ScalarBits() int
	// SafeScalarBytes is the number of random bytes to read in order to sample a uniform scalar.
	SafeScalarBytes() int
	// Order returns the order of the group as a modulus.
	Order() *saferith.Modulus
}

// Scalar is an element of the field ℤₚ, where p is the order of the group.
//
// Arithmetic methods modify the receiver and return it.
type Scalar interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Invert() Scalar
	Negate() Scalar
	Equal(Scalar) bool
	IsZero() bool
	Set(Scalar) Scalar
	SetNat(*saferith.Nat) Scalar
	// Act returns s⋅P in a new point.
	Act(Point) Point
	// ActOnBase returns s⋅g in a new point.
	ActOnBase() Point
}

// Point is an element of the group.
//
// Arithmetic methods return a new Point and leave the receiver untouched.
type Point interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
	Curve() Curve
	Add(Point) Point
	Sub(Point) Point
	Negate() Point
	Set(Point) Point
	Equal(Point) bool
	IsIdentity() bool
}

// FromHash converts a hash value to a Scalar.
//
// There is some disagreement about how this should be done.
// [NSA] suggests that this is done in the obvious
// manner, but [SECG] truncates the hash to the bit-length of the curve order
// first. We follow [SECG] because that's what OpenSSL does. Additionally,
// OpenSSL right shifts excess bits from the number if the hash is too large
// and we mirror that too.
//
// Taken from crypto/ecdsa.
func FromHash(group Curve, h []byte) Scalar {
	order := group.Order()
	orderBits := order.BitLen()
	orderBytes := (orderBits + 7) / 8
	if len(h) > orderBytes {
		h = h[:orderBytes]
	}
	s := new(saferith.Nat).SetBytes(h)
	excess := len(h)*8 - orderBits
	if excess > 0 {
		s.Rsh(s, uint(excess), -1)
	}
	return group.NewScalar().SetNat(s)
}

// ScalarFromUint returns the scalar with the integer value x.
func ScalarFromUint(group Curve, x uint64) Scalar {
	return group.NewScalar().SetNat(new(saferith.Nat).SetUint64(x))
}

// Compare orders two scalars by their canonical big-endian representation.
// It returns -1, 0 or 1.
func Compare(a, b Scalar) int {
	aBytes, errA := a.MarshalBinary()
	bBytes, errB := b.MarshalBinary()
	if errA != nil || errB != nil {
		panic("curve.Compare: failed to marshal scalar")
	}
	return bytes.Compare(aBytes, bBytes)
}

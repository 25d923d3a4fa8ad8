package polynomial_test

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/polynomial"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

func indices(group curve.Curve, n int) []curve.Scalar {
	domain := make([]curve.Scalar, n)
	for i := range domain {
		domain[i] = curve.ScalarFromUint(group, uint64(i+1))
	}
	return domain
}

func TestPolynomial_Feldman(t *testing.T) {
	group := curve.Secp256k1{}
	secret := sample.Scalar(rand.Reader, group)
	poly := polynomial.NewPolynomial(group, 2, secret)
	exp := polynomial.NewPolynomialExponent(poly)

	assert.Equal(t, uint32(2), poly.Degree())
	assert.Equal(t, 2, exp.Degree())
	assert.True(t, exp.Constant().Equal(secret.ActOnBase()))

	for _, x := range indices(group, 5) {
		share := poly.Evaluate(x)
		assert.True(t, share.ActOnBase().Equal(exp.Evaluate(x)), "g⋅f(x) should equal F(x)")
	}

	assert.Panics(t, func() { poly.Evaluate(group.NewScalar()) })
}

func TestLagrange_Reconstruct(t *testing.T) {
	group := curve.Secp256k1{}
	secret := sample.Scalar(rand.Reader, group)
	poly := polynomial.NewPolynomial(group, 2, secret)

	for _, n := range []int{3, 4, 7} {
		domain := indices(group, n)
		coefficients, err := polynomial.Lagrange(group, domain)
		require.NoError(t, err)

		result := group.NewScalar()
		points := make([]curve.Point, n)
		for j, x := range domain {
			share := poly.Evaluate(x)
			points[j] = share.ActOnBase()
			result.Add(share.Mul(coefficients[j]))
		}
		assert.True(t, result.Equal(secret))

		X, err := polynomial.Interpolate(group, domain, points)
		require.NoError(t, err)
		assert.True(t, X.Equal(secret.ActOnBase()))
	}
}

func TestLagrangeAt(t *testing.T) {
	group := curve.Secp256k1{}
	poly := polynomial.NewPolynomial(group, 1, sample.Scalar(rand.Reader, group))
	domain := indices(group, 2)
	target := curve.ScalarFromUint(group, 3)

	coefficients, err := polynomial.LagrangeAt(group, domain, target)
	require.NoError(t, err)

	result := group.NewScalar()
	for j, x := range domain {
		result.Add(poly.Evaluate(x).Mul(coefficients[j]))
	}
	assert.True(t, result.Equal(poly.Evaluate(target)))
}

func TestLagrange_Invalid(t *testing.T) {
	group := curve.Secp256k1{}
	one := curve.ScalarFromUint(group, 1)

	_, err := polynomial.Lagrange(group, []curve.Scalar{one, group.NewScalar()})
	assert.ErrorIs(t, err, polynomial.ErrZeroPoint)

	_, err = polynomial.Lagrange(group, []curve.Scalar{one, curve.ScalarFromUint(group, 1)})
	assert.ErrorIs(t, err, polynomial.ErrDuplicatePoint)
}

func TestExponent_Marshal(t *testing.T) {
	group := curve.Secp256k1{}
	exp := polynomial.NewPolynomialExponent(polynomial.NewPolynomial(group, 3, nil))
	assert.True(t, exp.Constant().IsIdentity())

	data, err := cbor.Marshal(exp)
	require.NoError(t, err)
	decoded := polynomial.EmptyExponent(group)
	require.NoError(t, cbor.Unmarshal(data, decoded))
	assert.True(t, exp.Equal(decoded))
}

func TestSum(t *testing.T) {
	group := curve.Secp256k1{}
	a := polynomial.NewPolynomial(group, 1, sample.Scalar(rand.Reader, group))
	b := polynomial.NewPolynomial(group, 1, sample.Scalar(rand.Reader, group))
	summed, err := polynomial.Sum([]*polynomial.Exponent{
		polynomial.NewPolynomialExponent(a),
		polynomial.NewPolynomialExponent(b),
	})
	require.NoError(t, err)
	x := curve.ScalarFromUint(group, 5)
	expected := a.Evaluate(x).Add(b.Evaluate(x)).ActOnBase()
	assert.True(t, summed.Evaluate(x).Equal(expected))
}

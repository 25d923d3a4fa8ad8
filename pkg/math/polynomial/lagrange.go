package polynomial

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

var (
	ErrZeroPoint      = errors.New("polynomial: interpolation point is zero")
	ErrDuplicatePoint = errors.New("polynomial: duplicate interpolation point")
)

// Lagrange returns the Lagrange coefficients at 0 for all points in the domain.
//
//	         x₀ … xₖ
//	lⱼ(0) = ---------------------------
//	        (x₀ - xⱼ) … (xₖ - xⱼ)
//
// The coefficients are returned in the same order as the domain.
// A zero point is rejected, since it would be the secret itself.
func Lagrange(group curve.Curve, domain []curve.Scalar) ([]curve.Scalar, error) {
	for _, x := range domain {
		if x.IsZero() {
			return nil, ErrZeroPoint
		}
	}
	return LagrangeAt(group, domain, group.NewScalar())
}

// LagrangeAt returns the Lagrange coefficients lⱼ(x) for all points xⱼ in the domain.
//
//	        (x - x₀) … (x - xₖ)
//	lⱼ(x) = ---------------------------
//	        (xⱼ - x₀) … (xⱼ - xₖ)
//
// where the products skip xⱼ itself.
// The coefficients are returned in the same order as the domain.
func LagrangeAt(group curve.Curve, domain []curve.Scalar, x curve.Scalar) ([]curve.Scalar, error) {
	for i := range domain {
		for j := i + 1; j < len(domain); j++ {
			if domain[i].Equal(domain[j]) {
				return nil, ErrDuplicatePoint
			}
		}
	}

	coefficients := make([]curve.Scalar, len(domain))
	for j, xj := range domain {
		num := curve.ScalarFromUint(group, 1)
		den := curve.ScalarFromUint(group, 1)
		for m, xm := range domain {
			if m == j {
				continue
			}
			// num *= x - xₘ
			num.Mul(group.NewScalar().Set(x).Sub(xm))
			// den *= xⱼ - xₘ
			den.Mul(group.NewScalar().Set(xj).Sub(xm))
		}
		coefficients[j] = num.Mul(den.Invert())
	}
	return coefficients, nil
}

// Interpolate returns Σⱼ lⱼ⋅Pⱼ, the evaluation at 0 of the polynomial in the exponent
// passing through (xⱼ, Pⱼ).
func Interpolate(group curve.Curve, domain []curve.Scalar, points []curve.Point) (curve.Point, error) {
	if len(domain) != len(points) {
		return nil, errors.New("polynomial: domain and points differ in length")
	}
	coefficients, err := Lagrange(group, domain)
	if err != nil {
		return nil, err
	}
	result := group.NewPoint()
	for j, l := range coefficients {
		result = result.Add(l.Act(points[j]))
	}
	return result, nil
}

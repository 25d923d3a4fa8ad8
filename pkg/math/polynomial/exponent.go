package polynomial

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

// Exponent represents a polynomial whose coefficients are points on an elliptic curve.
//
// These are the Feldman commitments c₀, …, cₜ to the coefficients of a Polynomial.
type Exponent struct {
	group        curve.Curve
	coefficients []curve.Point
}

// NewPolynomialExponent generates an Exponent polynomial F(X) = [secret + a₁•X + … + aₜ•Xᵗ]•G,
// with coefficients in G, and degree t.
func NewPolynomialExponent(polynomial *Polynomial) *Exponent {
	p := &Exponent{
		group:        polynomial.group,
		coefficients: make([]curve.Point, len(polynomial.coefficients)),
	}

	for i, c := range polynomial.coefficients {
		p.coefficients[i] = c.ActOnBase()
	}

	return p
}

// EmptyExponent returns an Exponent with no coefficients, ready to be unmarshalled.
func EmptyExponent(group curve.Curve) *Exponent {
	return &Exponent{group: group}
}

// Evaluate returns F(index) using Horner's method.
func (p *Exponent) Evaluate(index curve.Scalar) curve.Point {
	result := p.group.NewPoint()

	for i := len(p.coefficients) - 1; i >= 0; i-- {
		// B_n-1 = [x]B_n  + A_n-1
		result = index.Act(result).Add(p.coefficients[i])
	}
	return result
}

// Degree returns the degree t of the polynomial.
func (p *Exponent) Degree() int {
	return len(p.coefficients) - 1
}

// Constant returns the constant coefficient of the polynomial 'in the exponent'.
func (p *Exponent) Constant() curve.Point {
	c := p.group.NewPoint()
	if len(p.coefficients) > 0 {
		c.Set(p.coefficients[0])
	}
	return c
}

// Copy returns a deep copy of p.
func (p *Exponent) Copy() *Exponent {
	q := &Exponent{
		group:        p.group,
		coefficients: make([]curve.Point, len(p.coefficients)),
	}
	for i, c := range p.coefficients {
		q.coefficients[i] = p.group.NewPoint().Set(c)
	}
	return q
}

// Equal returns true if both polynomials have the same coefficients.
func (p *Exponent) Equal(other *Exponent) bool {
	if len(p.coefficients) != len(other.coefficients) {
		return false
	}
	for i := range p.coefficients {
		if !p.coefficients[i].Equal(other.coefficients[i]) {
			return false
		}
	}
	return true
}

// Sum creates a new Polynomial in the Exponent, by summing a slice of existing ones.
func Sum(polynomials []*Exponent) (*Exponent, error) {
	if len(polynomials) == 0 {
		return nil, errors.New("polynomial.Sum: no polynomials")
	}

	summed := polynomials[0].Copy()

	for _, q := range polynomials[1:] {
		if len(q.coefficients) != len(summed.coefficients) {
			return nil, errors.New("polynomial.Sum: different degrees")
		}
		for i := range summed.coefficients {
			summed.coefficients[i] = summed.coefficients[i].Add(q.coefficients[i])
		}
	}
	return summed, nil
}

// WriteTo implements io.WriterTo and should be used within the hash.Hash function.
func (p *Exponent) WriteTo(w io.Writer) (int64, error) {
	if p == nil {
		return 0, io.ErrUnexpectedEOF
	}
	total := int64(0)

	// write the number of coefficients
	if err := binary.Write(w, binary.BigEndian, uint32(len(p.coefficients))); err != nil {
		return total, err
	}
	total += 4

	for _, c := range p.coefficients {
		data, err := c.MarshalBinary()
		if err != nil {
			return total, err
		}
		n, err := w.Write(data)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (*Exponent) Domain() string {
	return "Exponent"
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p *Exponent) MarshalBinary() ([]byte, error) {
	encoded := make([][]byte, len(p.coefficients))
	for i, c := range p.coefficients {
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		encoded[i] = data
	}
	return cbor.Marshal(encoded)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// The receiver must have been created with EmptyExponent.
func (p *Exponent) UnmarshalBinary(data []byte) error {
	if p.group == nil {
		return errors.New("polynomial.Exponent: unmarshal without group")
	}
	var encoded [][]byte
	if err := cbor.Unmarshal(data, &encoded); err != nil {
		return err
	}
	p.coefficients = make([]curve.Point, len(encoded))
	for i, b := range encoded {
		c := p.group.NewPoint()
		if err := c.UnmarshalBinary(b); err != nil {
			return fmt.Errorf("polynomial.Exponent: coefficient %d: %w", i, err)
		}
		p.coefficients[i] = c
	}
	return nil
}

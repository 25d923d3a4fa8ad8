package zksch

import (
	"crypto/rand"

	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

// Randomness = a ← ℤₚ.
type Randomness struct {
	a          curve.Scalar
	commitment Commitment
}

// Commitment = randomness•G, where.
type Commitment struct {
	C curve.Point
}

// Response = randomness + H(..., commitment, public)•secret (mod p).
type Response struct {
	group curve.Curve
	Z     curve.Scalar
}

// Proof is a Schnorr proof of knowledge of the discrete logarithm of some public point.
type Proof struct {
	C Commitment
	Z Response
}

// NewProof generates a Schnorr proof of knowledge of exponent for public, using the Fiat-Shamir transform.
//
// The hash must be salted with the session data the proof is bound to.
func NewProof(hash *hash.Hash, public curve.Point, private curve.Scalar) *Proof {
	a := NewRandomness(public.Curve())
	z := a.Prove(hash, public, private)
	return &Proof{
		C: *a.Commitment(),
		Z: *z,
	}
}

// NewRandomness creates a new a ∈ ℤₚ and the corresponding commitment C = a•G.
// This can be used to run the proof in a non-interactive way.
func NewRandomness(group curve.Curve) *Randomness {
	a, C := sample.ScalarPointPair(rand.Reader, group)
	return &Randomness{
		a:          a,
		commitment: Commitment{C: C},
	}
}

// RandomnessFrom creates Randomness from a nonce a that was sampled and committed to earlier.
func RandomnessFrom(a curve.Scalar) *Randomness {
	return &Randomness{
		a:          a,
		commitment: Commitment{C: a.ActOnBase()},
	}
}

func challenge(hash *hash.Hash, group curve.Curve, commitment *Commitment, public curve.Point) (e curve.Scalar, err error) {
	err = hash.WriteAny(commitment.C, public)
	e = sample.Scalar(hash.Digest(), group)
	return
}

// Prove creates a Response = Randomness + H(..., Commitment, public)•secret (mod p).
func (r *Randomness) Prove(hash *hash.Hash, public curve.Point, secret curve.Scalar) *Response {
	if public.IsIdentity() || secret.IsZero() {
		return nil
	}
	group := secret.Curve()
	e, err := challenge(hash, group, &r.commitment, public)
	if err != nil {
		return nil
	}
	es := e.Mul(secret)
	z := es.Add(r.a)
	return &Response{group: group, Z: z}
}

// Commitment returns the commitment C = a•G for the randomness a.
func (r *Randomness) Commitment() *Commitment {
	return &r.commitment
}

// Verify checks that Response•G = Commitment + H(..., Commitment, public)•Public.
func (z *Response) Verify(hash *hash.Hash, public curve.Point, commitment *Commitment) bool {
	if z == nil || !z.IsValid() || public.IsIdentity() {
		return false
	}
	if commitment == nil || !commitment.IsValid() {
		return false
	}

	e, err := challenge(hash, z.group, commitment, public)
	if err != nil {
		return false
	}

	lhs := z.Z.ActOnBase()
	rhs := e.Act(public).Add(commitment.C)

	return lhs.Equal(rhs)
}

// Verify checks a Schnorr proof created with NewProof.
func (p *Proof) Verify(hash *hash.Hash, public curve.Point) bool {
	if p == nil {
		return false
	}
	return p.Z.Verify(hash, public, &p.C)
}

// IsValid checks that the commitment is not the identity.
func (c *Commitment) IsValid() bool {
	return c.C != nil && !c.C.IsIdentity()
}

// IsValid checks that the response is non-zero.
func (z *Response) IsValid() bool {
	return z.Z != nil && !z.Z.IsZero()
}

// EmptyProof returns a Proof whose fields are initialized, ready to be unmarshalled.
func EmptyProof(group curve.Curve) *Proof {
	return &Proof{
		C: Commitment{C: group.NewPoint()},
		Z: Response{group: group, Z: group.NewScalar()},
	}
}

// EmptyResponse returns a Response ready to be unmarshalled.
func EmptyResponse(group curve.Curve) *Response {
	return &Response{group: group, Z: group.NewScalar()}
}

// EmptyCommitment returns a Commitment ready to be unmarshalled.
func EmptyCommitment(group curve.Curve) *Commitment {
	return &Commitment{C: group.NewPoint()}
}

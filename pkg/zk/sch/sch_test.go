package zksch

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

func TestSchPass(t *testing.T) {
	group := curve.Secp256k1{}

	a := NewRandomness(group)
	x, X := sample.ScalarPointPair(rand.Reader, group)
	proof := a.Prove(hash.New(), X, x)
	require.NotNil(t, proof)
	assert.True(t, proof.Verify(hash.New(), X, a.Commitment()), "proof should pass")

	full := NewProof(hash.New(), X, x)
	assert.True(t, full.Verify(hash.New(), X), "proof should pass")
}

func TestSchFail(t *testing.T) {
	group := curve.Secp256k1{}

	a := NewRandomness(group)
	x, X := sample.ScalarPointPair(rand.Reader, group)
	proof := a.Prove(hash.New(), X, x)

	_, Y := sample.ScalarPointPair(rand.Reader, group)
	assert.False(t, proof.Verify(hash.New(), Y, a.Commitment()), "proof should fail for another public")

	salted := hash.New()
	require.NoError(t, salted.WriteAny([]byte("other session")))
	assert.False(t, proof.Verify(salted, X, a.Commitment()), "proof should fail with another salt")

	assert.Nil(t, a.Prove(hash.New(), group.NewPoint(), x), "proof of identity should not be created")
	assert.False(t, (*Response)(nil).Verify(hash.New(), X, a.Commitment()))
}

func TestSchMarshal(t *testing.T) {
	group := curve.Secp256k1{}
	x, X := sample.ScalarPointPair(rand.Reader, group)
	proof := NewProof(hash.New(), X, x)

	data, err := cbor.Marshal(proof)
	require.NoError(t, err)
	decoded := EmptyProof(group)
	require.NoError(t, cbor.Unmarshal(data, decoded))
	assert.True(t, decoded.Verify(hash.New(), X))
}

package hash

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
)

func TestHash_WriteAny(t *testing.T) {
	group := curve.Secp256k1{}
	x := sample.Scalar(rand.Reader, group)

	testFunc := func(vs ...interface{}) error {
		return New().WriteAny(vs...)
	}

	assert.NoError(t, testFunc([]byte{1, 2, 3}))
	assert.NoError(t, testFunc(x, x.ActOnBase()))
	assert.NoError(t, testFunc(&BytesWithDomain{TheDomain: "test", Bytes: []byte("data")}))
	assert.Error(t, testFunc(42))
	assert.Error(t, testFunc(&BytesWithDomain{TheDomain: "nil"}))
}

func TestHash_DomainSeparation(t *testing.T) {
	h1 := New()
	require.NoError(t, h1.WriteAny(&BytesWithDomain{TheDomain: "a", Bytes: []byte("bc")}))
	h2 := New()
	require.NoError(t, h2.WriteAny(&BytesWithDomain{TheDomain: "ab", Bytes: []byte("c")}))
	assert.NotEqual(t, h1.Sum(), h2.Sum())
}

func TestHash_Clone(t *testing.T) {
	h := New()
	require.NoError(t, h.WriteAny([]byte("session")))
	clone := h.Clone()
	assert.Equal(t, h.Sum(), clone.Sum())

	require.NoError(t, clone.WriteAny([]byte("more")))
	assert.NotEqual(t, h.Sum(), clone.Sum())
}

func TestCommit(t *testing.T) {
	group := curve.Secp256k1{}
	x := sample.Scalar(rand.Reader, group)
	X := x.ActOnBase()

	h := New()
	c, d, err := h.Commit(X, []byte("data"))
	require.NoError(t, err)
	assert.NoError(t, c.Validate())
	assert.NoError(t, d.Validate())

	assert.True(t, h.Decommit(c, d, X, []byte("data")))
	assert.False(t, h.Decommit(c, d, X, []byte("other")))
	assert.False(t, h.Decommit(c, d, []byte("data"), X))

	d[0] ^= 1
	assert.False(t, h.Decommit(c, d, X, []byte("data")))
	assert.False(t, h.Decommit(c[:10], d, X, []byte("data")))
}

package types_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
)

func TestRID_XOR(t *testing.T) {
	a, err := types.NewRID(rand.Reader)
	require.NoError(t, err)
	b, err := types.NewRID(rand.Reader)
	require.NoError(t, err)

	joint := a.Copy()
	joint.XOR(b)
	require.NoError(t, joint.Validate())
	joint.XOR(b)
	assert.Equal(t, a, joint)

	joint.XOR(a)
	assert.ErrorIs(t, joint.Validate(), types.ErrZeroRID)
	assert.Equal(t, types.EmptyRID(), joint)
}

func TestRID_Validate(t *testing.T) {
	assert.ErrorIs(t, types.EmptyRID().Validate(), types.ErrZeroRID)
	assert.Error(t, types.RID(nil).Validate())
	assert.Error(t, types.RID(bytes.Repeat([]byte{1}, params.SecBytes+1)).Validate())

	// a short contribution does not panic when combined
	short := types.RID{1, 2}
	rid := types.EmptyRID()
	rid.XOR(short)
	assert.Equal(t, []byte{1, 2}, []byte(rid[:2]))
}

func TestNewRID_ShortReader(t *testing.T) {
	_, err := types.NewRID(bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

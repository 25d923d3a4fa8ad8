package dkg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/bip32"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

func TestConfig_DeriveChild(t *testing.T) {
	configs := runKeygen(t, 3, 2)

	children := make([]*Config, len(configs))
	for i, c := range configs {
		child, err := c.DeriveChild(7)
		require.NoError(t, err)
		children[i] = child
	}
	checkOutput(t, children)

	tweak, chainKey, err := bip32.DeriveScalar(configs[0].PublicKey, configs[0].ChainKey, 7)
	require.NoError(t, err)
	assert.True(t, configs[0].PublicKey.Add(tweak.ActOnBase()).Equal(children[0].PublicKey))
	assert.Equal(t, chainKey, []byte(children[0].ChainKey))

	viaPath, err := configs[0].DerivePath("m/7")
	require.NoError(t, err)
	assert.True(t, viaPath.PrivateShare.Equal(children[0].PrivateShare))

	_, err = configs[0].DerivePath("m/0'")
	assert.ErrorIs(t, err, bip32.ErrHardened)
}

func TestConfig_Copy(t *testing.T) {
	c := runKeygen(t, 2, 2)[0]
	copied := c.Copy()
	copied.PrivateShare.Add(curve.ScalarFromUint(group, 1))
	assert.False(t, c.PrivateShare.Equal(copied.PrivateShare))
	require.NoError(t, c.Validate())
	assert.Error(t, copied.Validate())
}

func TestConfig_Address(t *testing.T) {
	c := runKeygen(t, 2, 2)[0]
	address, err := c.Address()
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`), address)

	again, err := c.Copy().Address()
	require.NoError(t, err)
	assert.Equal(t, address, again)
}

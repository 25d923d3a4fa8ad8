package protocol_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
)

func TestMessage_Text(t *testing.T) {
	msg := &protocol.Message{
		SSID:        []byte{1, 2, 3},
		From:        "a",
		To:          "b",
		Protocol:    "test",
		RoundNumber: 2,
		P2P:         []byte("p2p"),
		Broadcast:   []byte("broadcast"),
	}
	text, err := msg.MarshalText()
	require.NoError(t, err)

	decoded := &protocol.Message{}
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, msg, decoded)
	assert.Equal(t, msg.Hash(), decoded.Hash())
	assert.Equal(t, round.KindBoth, decoded.Kind())
	assert.False(t, decoded.IsBroadcast())
	assert.True(t, decoded.IsFor("b"))
	assert.False(t, decoded.IsFor("c"))
	assert.Contains(t, decoded.String(), "010203")

	decoded.RoundNumber = 3
	assert.NotEqual(t, msg.Hash(), decoded.Hash())

	assert.Error(t, (&protocol.Message{}).UnmarshalText([]byte("not base64!")))

	anonymous, err := (&protocol.Message{Protocol: "test"}).MarshalText()
	require.NoError(t, err)
	assert.Error(t, (&protocol.Message{}).UnmarshalText(anonymous))
}

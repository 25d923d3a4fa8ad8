package memnet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/memnet"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

func TestNetwork(t *testing.T) {
	ids := party.NewIDSlice([]party.ID{"a", "b", "c"})
	network := memnet.New(ids)
	ctx := context.Background()
	a, b, c := network.Endpoint("a"), network.Endpoint("b"), network.Endpoint("c")

	require.NoError(t, a.Broadcast(ctx, "hello"))
	for _, e := range []interface {
		Receive(context.Context) (string, error)
	}{b, c} {
		payload, err := e.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, "hello", payload)
	}

	require.NoError(t, b.Send(ctx, "c", "direct"))
	payload, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "direct", payload)

	assert.Error(t, a.Send(ctx, "unknown", "lost"))

	// the sender does not receive its own broadcast
	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = a.Receive(timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNetwork_Intercept(t *testing.T) {
	ids := party.NewIDSlice([]party.ID{"a", "b", "c"})
	network := memnet.New(ids)
	network.Intercept = func(from, to party.ID, payload string) string {
		if to == "b" {
			return ""
		}
		return string(from) + ":" + payload
	}
	ctx := context.Background()
	require.NoError(t, network.Endpoint("a").Broadcast(ctx, "x"))

	payload, err := network.Endpoint("c").Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a:x", payload)

	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = network.Endpoint("b").Receive(timeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

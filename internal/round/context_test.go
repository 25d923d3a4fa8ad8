package round_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/internal/test"
	"github.com/taurusgroup/threshold-ecdsa/internal/types"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// xorState is a toy protocol where every party contributes a random RID and
// the output is the XOR of all contributions.
type xorState struct {
	rid      types.RID
	received []types.RID
	computed int
}

func (s *xorState) Clone() *xorState {
	out := &xorState{computed: s.computed}
	if s.rid != nil {
		out.rid = s.rid.Copy()
	}
	for _, r := range s.received {
		if r != nil {
			r = r.Copy()
		}
		out.received = append(out.received, r)
	}
	return out
}

type xorPayload struct {
	SID []byte
	RID types.RID
}

type xorRound0 struct{}

func (xorRound0) Number() round.Number { return 0 }

func (xorRound0) Expects() round.Kind { return round.KindNone }

func (xorRound0) Init(*round.Context[*xorState]) {}

func (xorRound0) VerifyMessage(*round.Context[*xorState], int) error { return nil }

func (xorRound0) ParseMessage(*round.Context[*xorState], int, *round.Message) error {
	return errors.New("unexpected message")
}

func (xorRound0) Compute(c *round.Context[*xorState]) error {
	rid, err := types.NewRID(rand.Reader)
	if err != nil {
		return err
	}
	c.State().rid = rid
	return nil
}

func (xorRound0) Finalize(c *round.Context[*xorState], out *round.Outbox) error {
	return out.Broadcast(&xorPayload{SID: c.SSID(), RID: c.State().rid})
}

type xorRound1 struct {
	payloads []*xorPayload
}

func (*xorRound1) Number() round.Number { return 1 }
func (*xorRound1) Expects() round.Kind  { return round.KindBroadcast }

func (r *xorRound1) Init(c *round.Context[*xorState]) {
	r.payloads = make([]*xorPayload, c.Directory().RemoteCount())
	c.State().received = make([]types.RID, c.Directory().RemoteCount())
}

func (r *xorRound1) ParseMessage(_ *round.Context[*xorState], from int, msg *round.Message) error {
	var p xorPayload
	if err := round.Decode(msg.Broadcast, &p); err != nil {
		return err
	}
	r.payloads[from] = &p
	return nil
}

func (r *xorRound1) VerifyMessage(c *round.Context[*xorState], from int) error {
	p := r.payloads[from]
	if !bytes.Equal(p.SID, c.SSID()) {
		return errors.New("wrong session")
	}
	if err := p.RID.Validate(); err != nil {
		return err
	}
	c.State().received[from] = p.RID
	return nil
}

func (r *xorRound1) Compute(c *round.Context[*xorState]) error {
	s := c.State()
	s.computed++
	result := s.rid.Copy()
	for _, rid := range s.received {
		result.XOR(rid)
	}
	c.SetResult(result)
	return nil
}

func (*xorRound1) Finalize(*round.Context[*xorState], *round.Outbox) error { return nil }

var (
	_ round.Round[*xorState] = xorRound0{}
	_ round.Round[*xorState] = (*xorRound1)(nil)
)

func newXOR(t *testing.T, self party.ID, parties []party.Party) *round.Context[*xorState] {
	t.Helper()
	d, err := party.NewDirectory(self, parties)
	require.NoError(t, err)
	c, err := round.New(round.Info{
		ProtocolID: "test/xor",
		Config: party.SessionConfig{
			Group:     curve.Secp256k1{},
			Threshold: 2,
			SessionID: []byte("session"),
		},
	}, d, &xorState{})
	require.NoError(t, err)
	require.NoError(t, c.BindRounds(
		func() round.Round[*xorState] { return xorRound0{} },
		func() round.Round[*xorState] { return &xorRound1{} },
	))
	return c
}

func newXORs(t *testing.T, n int) []*round.Context[*xorState] {
	ids := test.PartyIDs(n)
	parties := test.Parties(curve.Secp256k1{}, ids)
	contexts := make([]*round.Context[*xorState], n)
	for i, id := range ids {
		contexts[i] = newXOR(t, id, parties)
	}
	return contexts
}

func drivers(contexts []*round.Context[*xorState]) []round.Driver {
	out := make([]round.Driver, len(contexts))
	for i, c := range contexts {
		out[i] = c
	}
	return out
}

func TestContext_Run(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		contexts := newXORs(t, n)
		require.NoError(t, test.Drive(drivers(contexts), nil))

		var first types.RID
		for _, c := range contexts {
			require.True(t, c.Done())
			result, err := c.Result()
			require.NoError(t, err)
			rid := result.(types.RID)
			if first == nil {
				first = rid
			}
			assert.Equal(t, first, rid)
			assert.Equal(t, 1, c.State().computed)
		}
	}
}

func TestContext_SSID(t *testing.T) {
	contexts := newXORs(t, 3)
	for _, c := range contexts[1:] {
		assert.Equal(t, contexts[0].SSID(), c.SSID())
	}

	other := newXORs(t, 4)
	assert.NotEqual(t, contexts[0].SSID(), other[0].SSID())
}

func TestContext_Invalid(t *testing.T) {
	ids := test.PartyIDs(2)
	d, err := party.NewDirectory(ids[0], test.Parties(curve.Secp256k1{}, ids))
	require.NoError(t, err)

	_, err = round.New(round.Info{Config: party.SessionConfig{Group: curve.Secp256k1{}, Threshold: 3}}, d, &xorState{})
	assert.Error(t, err)

	c, err := round.New(round.Info{Config: party.SessionConfig{Group: curve.Secp256k1{}, Threshold: 2}}, d, &xorState{})
	require.NoError(t, err)
	assert.ErrorIs(t, c.BindRounds(), round.ErrNoRounds)
	_, _, err = c.DriveRound()
	assert.ErrorIs(t, err, round.ErrNoRounds)
}

// start runs round 0 for all contexts and returns their broadcasts.
func start(t *testing.T, contexts []*round.Context[*xorState]) []*round.Message {
	var msgs []*round.Message
	for _, c := range contexts {
		out, done, err := c.DriveRound()
		require.NoError(t, err)
		require.False(t, done)
		require.Len(t, out, 1)
		assert.Equal(t, round.Number(1), out[0].RoundNumber)
		assert.Equal(t, round.KindBroadcast, out[0].Kind())
		msgs = append(msgs, out...)
	}
	return msgs
}

func TestContext_Duplicate(t *testing.T) {
	contexts := newXORs(t, 3)
	msgs := start(t, contexts)
	c := contexts[0]

	// deliver the same message twice, then the last one
	out, done, err := c.DriveRound(msgs[1], msgs[1])
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, out)

	out, done, err = c.DriveRound(msgs[1])
	require.NoError(t, err)
	assert.False(t, done)
	assert.Empty(t, out)

	_, done, err = c.DriveRound(msgs[2], msgs[2])
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, c.State().computed)

	_, done, err = c.DriveRound(msgs[2])
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 1, c.State().computed, "compute must never run twice")
}

func TestContext_ConflictingDuplicate(t *testing.T) {
	contexts := newXORs(t, 3)
	msgs := start(t, contexts)
	c := contexts[0]

	_, _, err := c.DriveRound(msgs[1])
	require.NoError(t, err)

	forged := *msgs[1]
	forged.Broadcast = append([]byte(nil), msgs[1].Broadcast...)
	forged.Broadcast[len(forged.Broadcast)-1] ^= 1
	_, _, err = c.DriveRound(&forged)
	var roundErr *round.Error
	require.ErrorAs(t, err, &roundErr)
	assert.Equal(t, round.CodeVerification, roundErr.Code)
	assert.Equal(t, msgs[1].From, roundErr.Culprit)

	// the first error is terminal
	_, _, err2 := c.DriveRound(msgs[2])
	assert.Equal(t, err, err2)
	_, err = c.Result()
	assert.Error(t, err)
}

func TestContext_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(msg *round.Message) *round.Message
		code   round.Code
	}{
		{"unknown sender", func(msg *round.Message) *round.Message {
			msg.From = "z"
			return msg
		}, round.CodeInvalidPartyID},
		{"undecodable", func(msg *round.Message) *round.Message {
			msg.Broadcast = []byte{0xff}
			return msg
		}, round.CodeDecode},
		{"wrong kind", func(msg *round.Message) *round.Message {
			msg.P2P = msg.Broadcast
			return msg
		}, round.CodeDecode},
		{"wrong session", func(msg *round.Message) *round.Message {
			msg.Broadcast = mustEncode(t, &xorPayload{SID: []byte("other"), RID: types.EmptyRID()})
			return msg
		}, round.CodeVerification},
		{"beyond final round", func(msg *round.Message) *round.Message {
			msg.RoundNumber = 5
			return msg
		}, round.CodeDecode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contexts := newXORs(t, 2)
			msgs := start(t, contexts)
			m := *msgs[1]
			_, _, err := contexts[0].DriveRound(tt.modify(&m))
			var roundErr *round.Error
			require.ErrorAs(t, err, &roundErr)
			assert.Equal(t, tt.code, roundErr.Code)
			assert.Equal(t, round.Number(1), roundErr.RoundNumber)
			assert.Equal(t, err, contexts[0].Err())
		})
	}
}

func mustEncode(t *testing.T, content interface{}) []byte {
	out, err := cbor.Marshal(content)
	require.NoError(t, err)
	return out
}

func TestContext_DeliveryGate(t *testing.T) {
	contexts := newXORs(t, 2)
	a, b := contexts[0], contexts[1]

	outB, _, err := b.DriveRound()
	require.NoError(t, err)

	// a has not started yet: the message for round 1 is queued while round 0 runs
	outA, done, err := a.DriveRound(outB...)
	require.NoError(t, err)
	assert.False(t, done)
	require.Len(t, outA, 1)
	assert.Nil(t, a.State().received, "round 1 must not be entered before delivery is confirmed")

	// confirming delivery enters round 1 and replays the queued message
	_, done, err = a.DriveRound()
	require.NoError(t, err)
	assert.True(t, done)

	_, done, err = b.DriveRound(outA...)
	require.NoError(t, err)
	assert.True(t, done)

	ra, _ := a.Result()
	rb, _ := b.Result()
	assert.Equal(t, ra, rb)
}

func TestContext_Clone(t *testing.T) {
	contexts := newXORs(t, 3)
	msgs := start(t, contexts)
	c := contexts[0]

	_, _, err := c.DriveRound(msgs[1])
	require.NoError(t, err)

	clone := c.Clone()
	require.NoError(t, clone.Err())

	_, done, err := c.DriveRound(msgs[2])
	require.NoError(t, err)
	require.True(t, done)

	_, done, err = clone.DriveRound(msgs[2])
	require.NoError(t, err)
	require.True(t, done)

	r1, _ := c.Result()
	r2, _ := clone.Result()
	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, c.State().computed)
	assert.Equal(t, 1, clone.State().computed)

	c.State().rid[0] ^= 1
	assert.NotEqual(t, c.State().rid, clone.State().rid, "states must not be shared")
}

func TestContext_PastRoundDropped(t *testing.T) {
	contexts := newXORs(t, 3)
	msgs := start(t, contexts)
	a := contexts[0]

	stale := *msgs[1]
	stale.RoundNumber = 0
	_, done, err := a.DriveRound(&stale)
	require.NoError(t, err)
	assert.False(t, done)

	_, done, err = a.DriveRound(msgs[1], msgs[2])
	require.NoError(t, err)
	assert.True(t, done)
}

package party_test

import (
	"crypto/rand"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/sample"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

func makeParties(group curve.Curve, ids ...party.ID) []party.Party {
	parties := make([]party.Party, len(ids))
	for i, id := range ids {
		parties[i] = party.Party{ID: id, Index: curve.ScalarFromUint(group, uint64(i+1))}
	}
	return parties
}

func TestNewDirectory(t *testing.T) {
	group := curve.Secp256k1{}
	parties := makeParties(group, "c", "a", "b")

	d, err := party.NewDirectory("b", parties)
	require.NoError(t, err)

	assert.Equal(t, 3, d.N())
	assert.Equal(t, 2, d.RemoteCount())
	assert.Equal(t, party.IDSlice{"a", "b", "c"}, d.IDs())
	assert.Equal(t, party.IDSlice{"a", "c"}, d.OtherIDs())

	pos, ok := d.Position("c")
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, party.ID("c"), d.Remote(pos).ID)
	assert.True(t, d.Remote(pos).Index.Equal(curve.ScalarFromUint(group, 1)))

	_, ok = d.Position("b")
	assert.False(t, ok, "the local party has no remote position")

	self, ok := d.Lookup("b")
	require.True(t, ok)
	assert.True(t, self.Index.Equal(curve.ScalarFromUint(group, 3)))

	_, ok = d.Lookup("z")
	assert.False(t, ok)
}

func TestNewDirectory_Invalid(t *testing.T) {
	group := curve.Secp256k1{}
	one := curve.ScalarFromUint(group, 1)
	two := curve.ScalarFromUint(group, 2)

	tests := []struct {
		name    string
		self    party.ID
		parties []party.Party
		err     error
	}{
		{"zero index", "a", []party.Party{{ID: "a", Index: one}, {ID: "b", Index: group.NewScalar()}}, party.ErrZeroIndex},
		{"missing index", "a", []party.Party{{ID: "a", Index: one}, {ID: "b"}}, party.ErrNilIndex},
		{"duplicate index", "a", []party.Party{{ID: "a", Index: one}, {ID: "b", Index: curve.ScalarFromUint(group, 1)}}, party.ErrDuplicateIndex},
		{"duplicate id", "a", []party.Party{{ID: "a", Index: one}, {ID: "a", Index: two}}, party.ErrDuplicateID},
		{"empty id", "a", []party.Party{{ID: "a", Index: one}, {ID: "", Index: two}}, party.ErrEmptyID},
		{"unknown self", "c", []party.Party{{ID: "a", Index: one}, {ID: "b", Index: two}}, party.ErrUnknownID},
		{"single party", "a", []party.Party{{ID: "a", Index: one}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := party.NewDirectory(tt.self, tt.parties)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestDirectory_Secret(t *testing.T) {
	group := curve.Secp256k1{}
	d, err := party.NewDirectory("a", makeParties(group, "a", "b"))
	require.NoError(t, err)

	x := sample.Scalar(rand.Reader, group)
	d.SetSecret(x)
	assert.True(t, d.Self().Public.Equal(x.ActOnBase()))

	assert.ErrorIs(t, d.SetPublic("a", sample.Scalar(rand.Reader, group).ActOnBase()), party.ErrSecretMismatch)
	assert.NoError(t, d.SetPublic("a", x.ActOnBase()))

	X := sample.Scalar(rand.Reader, group).ActOnBase()
	require.NoError(t, d.SetPublic("b", X))
	b, _ := d.Lookup("b")
	assert.True(t, b.Public.Equal(X))
	assert.ErrorIs(t, d.SetPublic("z", X), party.ErrUnknownID)

	clone := d.Clone()
	clone.SetSecret(sample.Scalar(rand.Reader, group))
	assert.True(t, d.Secret().Equal(x), "clone must not alias the original")
}

func TestSessionConfig_Validate(t *testing.T) {
	group := curve.Secp256k1{}
	tests := []struct {
		threshold, n int
		valid        bool
	}{
		{2, 2, true},
		{2, 3, true},
		{3, 3, true},
		{1, 3, false},
		{4, 3, false},
		{2, 1, false},
	}
	for _, tt := range tests {
		err := party.SessionConfig{Group: group, Threshold: tt.threshold}.Validate(tt.n)
		if tt.valid {
			assert.NoError(t, err, "t=%d n=%d", tt.threshold, tt.n)
		} else {
			assert.Error(t, err, "t=%d n=%d", tt.threshold, tt.n)
		}
	}
	assert.Error(t, party.SessionConfig{Threshold: 2}.Validate(2))
}

func TestIDSlice(t *testing.T) {
	ids := party.NewIDSlice([]party.ID{"c", "a", "b"})
	assert.True(t, ids.Valid())
	assert.True(t, ids.Contains("a", "c"))
	assert.False(t, ids.Contains("d"))
	assert.Equal(t, 1, ids.GetIndex("b"))
	assert.Equal(t, -1, ids.GetIndex("d"))
	assert.Equal(t, party.IDSlice{"a", "c"}, ids.Remove("b"))
	assert.False(t, party.IDSlice{"a", "a"}.Valid())
}

func TestPointMap_Marshal(t *testing.T) {
	group := curve.Secp256k1{}
	m := party.NewPointMap(map[party.ID]curve.Point{
		"a": sample.Scalar(rand.Reader, group).ActOnBase(),
		"b": group.NewPoint(),
	})
	data, err := cbor.Marshal(m)
	require.NoError(t, err)

	decoded := party.EmptyPointMap(group)
	require.NoError(t, cbor.Unmarshal(data, decoded))
	require.Len(t, decoded.Points, 2)
	assert.True(t, decoded.Points["a"].Equal(m.Points["a"]))
	assert.True(t, decoded.Points["b"].IsIdentity())
}

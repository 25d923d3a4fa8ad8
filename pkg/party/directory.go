package party

import (
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

// Directory is the ordered list of the parties of a session, seen from the local party.
//
// Remote parties are stored in a slice ordered by ID, and addressed by their position in it.
// The position is the slot used by rounds for their per-sender buffers.
type Directory struct {
	self      Party
	secret    curve.Scalar
	remotes   []Party
	positions map[ID]int
}

// NewDirectory creates the directory of the parties of a session for the party selfID.
//
// It returns an error if an ID is empty or repeated, if an index is zero or repeated,
// or if selfID is not one of the parties.
func NewDirectory(selfID ID, parties []Party) (*Directory, error) {
	if n := len(parties); n < 2 || n > params.MaxParties {
		return nil, fmt.Errorf("party: invalid number of parties %d", n)
	}

	ids := make([]ID, 0, len(parties))
	byID := make(map[ID]Party, len(parties))
	for i, p := range parties {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("party %d (%s): %w", i, p.ID, err)
		}
		if _, ok := byID[p.ID]; ok {
			return nil, fmt.Errorf("party %s: %w", p.ID, ErrDuplicateID)
		}
		for _, other := range byID {
			if other.Index.Equal(p.Index) {
				return nil, fmt.Errorf("parties %s and %s: %w", other.ID, p.ID, ErrDuplicateIndex)
			}
		}
		byID[p.ID] = p.clone()
		ids = append(ids, p.ID)
	}

	self, ok := byID[selfID]
	if !ok {
		return nil, fmt.Errorf("party %s: %w", selfID, ErrUnknownID)
	}

	d := &Directory{
		self:      self,
		remotes:   make([]Party, 0, len(parties)-1),
		positions: make(map[ID]int, len(parties)-1),
	}
	for _, id := range NewIDSlice(ids) {
		if id == selfID {
			continue
		}
		d.positions[id] = len(d.remotes)
		d.remotes = append(d.remotes, byID[id])
	}
	return d, nil
}

// Self returns the local party.
func (d *Directory) Self() Party { return d.self }

// SelfID returns the ID of the local party.
func (d *Directory) SelfID() ID { return d.self.ID }

// N returns the total number of parties, including the local party.
func (d *Directory) N() int { return len(d.remotes) + 1 }

// RemoteCount returns the number of remote parties.
func (d *Directory) RemoteCount() int { return len(d.remotes) }

// Remote returns the remote party at position pos.
func (d *Directory) Remote(pos int) Party { return d.remotes[pos] }

// Position returns the position of a remote party.
// The local party does not have a position.
func (d *Directory) Position(id ID) (int, bool) {
	pos, ok := d.positions[id]
	return pos, ok
}

// Lookup returns the party with the given ID, which may be the local party.
func (d *Directory) Lookup(id ID) (Party, bool) {
	if id == d.self.ID {
		return d.self, true
	}
	pos, ok := d.positions[id]
	if !ok {
		return Party{}, false
	}
	return d.remotes[pos], true
}

// IDs returns the sorted IDs of all parties.
func (d *Directory) IDs() IDSlice {
	ids := make([]ID, 0, d.N())
	ids = append(ids, d.self.ID)
	for _, p := range d.remotes {
		ids = append(ids, p.ID)
	}
	return NewIDSlice(ids)
}

// OtherIDs returns the sorted IDs of the remote parties.
func (d *Directory) OtherIDs() IDSlice {
	ids := make(IDSlice, len(d.remotes))
	for i, p := range d.remotes {
		ids[i] = p.ID
	}
	return ids
}

// Parties returns all parties ordered by ID.
func (d *Directory) Parties() []Party {
	parties := make([]Party, 0, d.N())
	for _, id := range d.IDs() {
		p, _ := d.Lookup(id)
		parties = append(parties, p)
	}
	return parties
}

// Indices returns the Shamir indices of all parties, ordered by ID.
func (d *Directory) Indices() []curve.Scalar {
	parties := d.Parties()
	indices := make([]curve.Scalar, len(parties))
	for i, p := range parties {
		indices[i] = p.Index
	}
	return indices
}

// Secret returns the secret share of the local party, or nil if it has not been set.
func (d *Directory) Secret() curve.Scalar { return d.secret }

// SetSecret sets the secret share x of the local party, along with its public share X = x⋅G.
func (d *Directory) SetSecret(x curve.Scalar) {
	d.secret = x.Curve().NewScalar().Set(x)
	d.self.Public = d.secret.ActOnBase()
}

// SetPublic records the public share X of a party.
// For the local party, X must match the secret share if one is set.
func (d *Directory) SetPublic(id ID, X curve.Point) error {
	if id == d.self.ID {
		if d.secret != nil && !d.secret.ActOnBase().Equal(X) {
			return ErrSecretMismatch
		}
		d.self.Public = X
		return nil
	}
	pos, ok := d.positions[id]
	if !ok {
		return fmt.Errorf("party %s: %w", id, ErrUnknownID)
	}
	d.remotes[pos].Public = X
	return nil
}

// Clone returns a deep copy of the directory.
func (d *Directory) Clone() *Directory {
	out := &Directory{
		self:      d.self.clone(),
		remotes:   make([]Party, len(d.remotes)),
		positions: make(map[ID]int, len(d.positions)),
	}
	if d.secret != nil {
		out.secret = d.secret.Curve().NewScalar().Set(d.secret)
	}
	for i, p := range d.remotes {
		out.remotes[i] = p.clone()
	}
	for id, pos := range d.positions {
		out.positions[id] = pos
	}
	return out
}

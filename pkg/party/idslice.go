package party

import (
	"encoding/binary"
	"io"
	"sort"
)

// IDSlice represents a sorted slice of unique party.ID.
type IDSlice []ID

// NewIDSlice returns a sorted copy of partyIDs.
func NewIDSlice(partyIDs []ID) IDSlice {
	ids := IDSlice(append([]ID(nil), partyIDs...))
	ids.sort()
	return ids
}

// Contains returns true if partyIDs contains all ids.
// Assumes that partyIDs is sorted.
func (partyIDs IDSlice) Contains(ids ...ID) bool {
	for _, id := range ids {
		if _, ok := partyIDs.search(id); !ok {
			return false
		}
	}
	return true
}

// Valid returns true if the IDSlice is sorted and does not contain any duplicates or empty IDs.
func (partyIDs IDSlice) Valid() bool {
	n := len(partyIDs)
	for i := 0; i < n; i++ {
		if partyIDs[i] == "" {
			return false
		}
		if i > 0 && partyIDs[i-1] >= partyIDs[i] {
			return false
		}
	}
	return true
}

// Copy returns an identical copy of the received.
func (partyIDs IDSlice) Copy() IDSlice {
	a := make(IDSlice, len(partyIDs))
	copy(a, partyIDs)
	return a
}

// Remove finds id in partyIDs and returns a copy of the slice if it was found.
func (partyIDs IDSlice) Remove(id ID) IDSlice {
	newPartyIDs := make(IDSlice, 0, len(partyIDs))
	for _, partyID := range partyIDs {
		if partyID != id {
			newPartyIDs = append(newPartyIDs, partyID)
		}
	}
	return newPartyIDs
}

// search returns the index of id and whether it was found, assuming partyIDs is sorted.
func (partyIDs IDSlice) search(id ID) (int, bool) {
	idx := sort.Search(len(partyIDs), func(i int) bool { return partyIDs[i] >= id })
	if idx < len(partyIDs) && partyIDs[idx] == id {
		return idx, true
	}
	return 0, false
}

// GetIndex returns the position of id in partyIDs, or -1 if it is absent.
func (partyIDs IDSlice) GetIndex(id ID) int {
	if idx, ok := partyIDs.search(id); ok {
		return idx
	}
	return -1
}

func (partyIDs IDSlice) sort() {
	sort.Slice(partyIDs, func(i, j int) bool { return partyIDs[i] < partyIDs[j] })
}

// WriteTo implements io.WriterTo interface.
func (partyIDs IDSlice) WriteTo(w io.Writer) (int64, error) {
	if partyIDs == nil {
		return 0, io.ErrUnexpectedEOF
	}
	nAll := int64(0)

	// write number of IDs
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(len(partyIDs)))
	n, err := w.Write(buf)
	nAll += int64(n)
	if err != nil {
		return nAll, err
	}

	for _, id := range partyIDs {
		// length-prefix each ID so that the encoding is injective
		binary.BigEndian.PutUint32(buf, uint32(len(id)))
		n, err = w.Write(buf)
		nAll += int64(n)
		if err != nil {
			return nAll, err
		}
		n64, err := id.WriteTo(w)
		nAll += n64
		if err != nil {
			return nAll, err
		}
	}
	return nAll, nil
}

// Domain implements hash.WriterToWithDomain.
func (IDSlice) Domain() string {
	return "IDSlice"
}

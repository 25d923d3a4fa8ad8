package test

import (
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// PartyIDs returns a party.IDSlice (sorted) with IDs represented as simple strings.
func PartyIDs(n int) party.IDSlice {
	baseString := ""
	ids := make(party.IDSlice, n)
	for i := range ids {
		if i%26 == 0 && i > 0 {
			baseString += "a"
		}
		ids[i] = party.ID(baseString + string('a'+rune(i%26)))
	}
	return party.NewIDSlice(ids)
}

// Parties returns one party.Party per ID, with Shamir indices 1, 2, … in the order of ids.
func Parties(group curve.Curve, ids party.IDSlice) []party.Party {
	parties := make([]party.Party, len(ids))
	for i, id := range ids {
		parties[i] = party.Party{
			ID:    id,
			Index: curve.ScalarFromUint(group, uint64(i+1)),
		}
	}
	return parties
}

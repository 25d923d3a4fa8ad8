package round

import (
	"bytes"

	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// Kind describes which payloads a message carries.
type Kind uint8

const (
	// KindNone is expected by rounds which do not receive anything.
	KindNone Kind = 0
	// KindP2P is a payload addressed to a single party.
	KindP2P Kind = 1 << 0
	// KindBroadcast is a payload sent identically to all parties.
	KindBroadcast Kind = 1 << 1
	// KindBoth is a message carrying a P2P payload along with the sender's broadcast payload.
	KindBoth = KindP2P | KindBroadcast
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindP2P:
		return "p2p"
	case KindBroadcast:
		return "broadcast"
	case KindBoth:
		return "p2p+broadcast"
	default:
		return "invalid"
	}
}

// Message is a unit of communication between two rounds of the same protocol.
//
// Payloads are opaque to the engine; they are decoded by the receiving Round.
type Message struct {
	// RoundNumber is the number of the round which consumes this message.
	RoundNumber Number
	From, To    party.ID
	P2P         []byte
	Broadcast   []byte
}

// Kind returns the kind of payloads carried by the message.
func (m *Message) Kind() Kind {
	var k Kind
	if len(m.P2P) > 0 {
		k |= KindP2P
	}
	if len(m.Broadcast) > 0 {
		k |= KindBroadcast
	}
	return k
}

// IsFor returns true if the message is intended for the designated party.
func (m *Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.To == "" || m.To == id
}

// Equal returns true if both messages carry the same header and payloads.
func (m *Message) Equal(other *Message) bool {
	return m.RoundNumber == other.RoundNumber &&
		m.From == other.From &&
		m.To == other.To &&
		bytes.Equal(m.P2P, other.P2P) &&
		bytes.Equal(m.Broadcast, other.Broadcast)
}

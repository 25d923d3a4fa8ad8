package protocol

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

// Message is the envelope exchanged between parties.
type Message struct {
	// SSID is a byte string which uniquely identifies the session this message belongs to.
	SSID []byte
	// From is the party.ID of the sender
	From party.ID
	// To is the intended recipient for this message.
	// If To == "", then the message should be interpreted as a broadcast message.
	To party.ID
	// Protocol identifies the protocol this message belongs to
	Protocol string
	// RoundNumber is the index of the round this message belongs to
	RoundNumber round.Number
	// P2P is the payload addressed to To only.
	P2P []byte
	// Broadcast is the payload the sender sends identically to all parties.
	Broadcast []byte
}

// String implements fmt.Stringer.
func (m *Message) String() string {
	return fmt.Sprintf("message: round %d, from: %s, to %v, protocol: %s, ssid: %s",
		m.RoundNumber, m.From, m.To, m.Protocol, hex.EncodeToString(m.SSID))
}

// IsBroadcast returns true if the message should be reliably broadcast to all participants in the protocol.
func (m *Message) IsBroadcast() bool {
	return m.To == ""
}

// IsFor returns true if the message is intended for the designated party.
func (m *Message) IsFor(id party.ID) bool {
	if m.From == id {
		return false
	}
	return m.To == "" || m.To == id
}

// Kind returns the kind of payloads the message carries.
func (m *Message) Kind() round.Kind {
	return m.toRound().Kind()
}

// Hash returns a 64 byte slice of the message content, including the headers.
// Can be used to produce a signature for the message.
func (m *Message) Hash() []byte {
	h := hash.New()
	_ = h.WriteAny(
		&hash.BytesWithDomain{TheDomain: "SSID", Bytes: append([]byte{}, m.SSID...)},
		&hash.BytesWithDomain{TheDomain: "From", Bytes: []byte(m.From)},
		&hash.BytesWithDomain{TheDomain: "To", Bytes: []byte(m.To)},
		&hash.BytesWithDomain{TheDomain: "Protocol", Bytes: []byte(m.Protocol)},
		m.RoundNumber,
		&hash.BytesWithDomain{TheDomain: "P2P", Bytes: append([]byte{}, m.P2P...)},
		&hash.BytesWithDomain{TheDomain: "Broadcast", Bytes: append([]byte{}, m.Broadcast...)},
	)
	return h.Sum()
}

type plainMessage Message

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *Message) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*plainMessage)(m))
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *Message) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, (*plainMessage)(m))
}

// MarshalText returns the transport-safe form of the message: its binary form encoded in base64.
func (m *Message) MarshalText() ([]byte, error) {
	data, err := m.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(out, data)
	return out, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Message) UnmarshalText(text []byte) error {
	data := make([]byte, base64.StdEncoding.DecodedLen(len(text)))
	n, err := base64.StdEncoding.Decode(data, text)
	if err != nil {
		return fmt.Errorf("protocol: decode message: %w", err)
	}
	if err = m.UnmarshalBinary(data[:n]); err != nil {
		return fmt.Errorf("protocol: decode message: %w", err)
	}
	if m.From == "" {
		return errors.New("protocol: decode message: missing sender")
	}
	return nil
}

func (m *Message) toRound() *round.Message {
	return &round.Message{
		RoundNumber: m.RoundNumber,
		From:        m.From,
		To:          m.To,
		P2P:         m.P2P,
		Broadcast:   m.Broadcast,
	}
}

func fromRound(ssid []byte, protocolID string, msg *round.Message) *Message {
	return &Message{
		SSID:        ssid,
		From:        msg.From,
		To:          msg.To,
		Protocol:    protocolID,
		RoundNumber: msg.RoundNumber,
		P2P:         msg.P2P,
		Broadcast:   msg.Broadcast,
	}
}

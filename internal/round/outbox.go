package round

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

var (
	ErrBroadcastSet  = errors.New("outbox: broadcast payload already set")
	ErrDuplicateSend = errors.New("outbox: payload already sent to party")
)

// Outbox collects the payloads produced by Round.Finalize.
// A round emits at most one broadcast payload, and at most one P2P payload per destination.
type Outbox struct {
	broadcast []byte
	p2p       map[party.ID][]byte
}

func newOutbox() *Outbox {
	return &Outbox{p2p: make(map[party.ID][]byte)}
}

// Broadcast encodes content as the broadcast payload of the round.
func (o *Outbox) Broadcast(content interface{}) error {
	if o.broadcast != nil {
		return ErrBroadcastSet
	}
	data, err := cbor.Marshal(content)
	if err != nil {
		return fmt.Errorf("outbox: encode broadcast: %w", err)
	}
	o.broadcast = data
	return nil
}

// Send encodes content as the P2P payload for the party to.
func (o *Outbox) Send(to party.ID, content interface{}) error {
	if _, ok := o.p2p[to]; ok {
		return fmt.Errorf("%w %s", ErrDuplicateSend, to)
	}
	data, err := cbor.Marshal(content)
	if err != nil {
		return fmt.Errorf("outbox: encode message for %s: %w", to, err)
	}
	o.p2p[to] = data
	return nil
}

// Decode decodes a payload produced by the Outbox into content.
// content should be initialized with the expected group elements before calling.
func Decode(data []byte, content interface{}) error {
	if len(data) == 0 {
		return errors.New("empty payload")
	}
	return cbor.Unmarshal(data, content)
}

// Package memnet connects the handlers of a simulated session through in-memory mailboxes.
package memnet

import (
	"context"
	"fmt"
	"sync"

	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/protocol"
)

// Network is an in-memory protocol.Transport provider for a fixed set of parties.
type Network struct {
	parties   party.IDSlice
	mtx       sync.Mutex
	mailboxes map[party.ID]chan string
	// Intercept, if set, may rewrite every payload before delivery, or drop it by returning "".
	Intercept func(from, to party.ID, payload string) string
}

// New creates a Network for the given parties.
// Each mailbox is buffered so that a session never blocks on an idle receiver.
func New(parties party.IDSlice) *Network {
	n := &Network{
		parties:   parties.Copy(),
		mailboxes: make(map[party.ID]chan string, len(parties)),
	}
	size := len(parties) * len(parties) * 8
	for _, id := range parties {
		n.mailboxes[id] = make(chan string, size)
	}
	return n
}

// Endpoint returns the protocol.Transport of party id.
func (n *Network) Endpoint(id party.ID) protocol.Transport {
	return &endpoint{network: n, self: id}
}

func (n *Network) mailbox(id party.ID) (chan string, bool) {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	mailbox, ok := n.mailboxes[id]
	return mailbox, ok
}

func (n *Network) deliver(ctx context.Context, from, to party.ID, payload string) error {
	mailbox, ok := n.mailbox(to)
	if !ok {
		return fmt.Errorf("memnet: unknown party %s", to)
	}
	n.mtx.Lock()
	intercept := n.Intercept
	n.mtx.Unlock()
	if intercept != nil {
		if payload = intercept(from, to, payload); payload == "" {
			return nil
		}
	}
	select {
	case mailbox <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type endpoint struct {
	network *Network
	self    party.ID
}

func (e *endpoint) Send(ctx context.Context, to party.ID, payload string) error {
	return e.network.deliver(ctx, e.self, to, payload)
}

// Broadcast delivers payload to every party but the sender, in ID order.
func (e *endpoint) Broadcast(ctx context.Context, payload string) error {
	for _, id := range e.network.parties {
		if id == e.self {
			continue
		}
		if err := e.network.deliver(ctx, e.self, id, payload); err != nil {
			return err
		}
	}
	return nil
}

func (e *endpoint) Receive(ctx context.Context) (string, error) {
	mailbox, ok := e.network.mailbox(e.self)
	if !ok {
		return "", fmt.Errorf("memnet: unknown party %s", e.self)
	}
	select {
	case payload := <-mailbox:
		return payload, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

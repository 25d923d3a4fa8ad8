package protocol

import (
	"context"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"golang.org/x/sync/errgroup"
)

// Transport carries the text encoding of messages between the local party and its peers.
// Broadcast must deliver the same payload to every other party.
type Transport interface {
	Send(ctx context.Context, to party.ID, payload string) error
	Broadcast(ctx context.Context, payload string) error
	Receive(ctx context.Context) (string, error)
}

// Run connects h to t until the protocol finishes, fails or ctx is cancelled,
// and returns the result of the protocol.
func Run(ctx context.Context, h *Handler, t Transport) (interface{}, error) {
	g, gctx := errgroup.WithContext(ctx)

	// inbound reading stops once the handler is done
	recvCtx, cancel := context.WithCancel(gctx)
	defer cancel()
	go func() {
		select {
		case <-h.Done():
		case <-recvCtx.Done():
		}
		cancel()
	}()

	g.Go(func() error {
		for msg := range h.Listen() {
			text, err := msg.MarshalText()
			if err != nil {
				return fmt.Errorf("protocol: encode message: %w", err)
			}
			if msg.IsBroadcast() {
				err = t.Broadcast(gctx, string(text))
			} else {
				err = t.Send(gctx, msg.To, string(text))
			}
			if err != nil {
				return fmt.Errorf("protocol: send %s: %w", msg, err)
			}
		}
		return nil
	})

	g.Go(func() error {
		for {
			payload, err := t.Receive(recvCtx)
			if err != nil {
				select {
				case <-h.Done():
					return nil
				default:
				}
				return fmt.Errorf("protocol: receive: %w", err)
			}
			msg := &Message{}
			if err = msg.UnmarshalText([]byte(payload)); err != nil {
				h.log.Warn().Err(err).Msg("dropping undecodable message")
				continue
			}
			h.Accept(msg)
		}
	})

	if err := g.Wait(); err != nil {
		h.Stop()
		if _, resultErr := h.Result(); resultErr != nil && !errors.Is(resultErr, ErrStopped) {
			return nil, resultErr
		}
		return nil, err
	}
	return h.Result()
}

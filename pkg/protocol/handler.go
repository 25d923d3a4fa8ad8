package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-ecdsa/internal/round"
)

// StartFunc creates the Driver of a protocol run.
// If the creation fails (likely due to misconfiguration), an error is returned.
type StartFunc func() (round.Driver, error)

// Option configures a Handler.
type Option func(h *Handler)

// WithLogger sets the logger of the handler and of the protocol it runs.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithMetrics reports the progress of the run to m.
func WithMetrics(m *Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// Handler represents an execution of a given protocol.
// It provides a simple interface for the user to receive/deliver protocol messages.
type Handler struct {
	mtx sync.Mutex

	driver  round.Driver
	log     zerolog.Logger
	metrics *Metrics

	out  chan *Message
	done chan struct{}

	finished bool
	result   interface{}
	err      error

	start      time.Time
	roundStart time.Time
}

// NewHandler expects a StartFunc for the desired protocol. It returns a handler that the user can interact with.
// The messages of the first round are available on Listen when NewHandler returns.
func NewHandler(create StartFunc, opts ...Option) (*Handler, error) {
	driver, err := create()
	if err != nil {
		return nil, fmt.Errorf("protocol: failed to create round: %w", err)
	}

	rounds := int(driver.FinalRoundNumber()) + 1
	h := &Handler{
		driver: driver,
		log:    zerolog.Nop(),
		out:    make(chan *Message, rounds*len(driver.PartyIDs())),
		done:   make(chan struct{}),
		start:  time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.With().
		Str("protocol", driver.ProtocolID()).
		Str("party", string(driver.SelfID())).
		Logger()
	if logged, ok := driver.(round.Logged); ok {
		logged.SetLogger(h.log)
	}
	h.roundStart = h.start
	h.log.Info().Msg("start")

	h.mtx.Lock()
	defer h.mtx.Unlock()
	if err = h.drive(); err != nil {
		return nil, err
	}
	return h, nil
}

// Listen returns a channel with outgoing messages that must be sent to other parties.
// The message received should be _reliably_ broadcast if msg.IsBroadcast() is true.
// The channel is closed when the protocol finishes, fails or is stopped.
func (h *Handler) Listen() <-chan *Message {
	return h.out
}

// Done is closed when the protocol finishes, fails or is stopped.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Result returns the protocol result if the protocol completed successfully. Otherwise an error is returned.
func (h *Handler) Result() (interface{}, error) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.result != nil {
		return h.result, nil
	}
	if h.err != nil {
		return nil, h.err
	}
	return nil, ErrNotFinished
}

// CanAccept checks the envelope of msg: session, protocol, destination and round number.
func (h *Handler) CanAccept(msg *Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	if !bytes.Equal(msg.SSID, h.driver.SSID()) {
		return ErrWrongSSID
	}
	if msg.Protocol != h.driver.ProtocolID() {
		return ErrWrongProtocolID
	}
	if !msg.IsFor(h.driver.SelfID()) {
		return ErrWrongDestination
	}
	if msg.RoundNumber > h.driver.FinalRoundNumber() {
		return ErrInvalidRoundNumber
	}
	return nil
}

// Accept delivers msg to the protocol.
//
// Messages whose envelope does not match this run are logged and dropped.
// Messages for later rounds are kept until the protocol reaches their round.
// Any failure of the protocol is terminal: the out channel is closed and Result returns the error.
// Accept may be called concurrently, calls are serialized.
func (h *Handler) Accept(msg *Message) {
	if err := h.CanAccept(msg); err != nil {
		event := h.log.Warn().Err(err)
		if msg != nil {
			event = event.Stringer("msg", msg)
		}
		event.Msg("dropping message")
		return
	}

	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.finished {
		return
	}
	h.metrics.observeMessage(h.driver.ProtocolID(), directionIn)
	h.log.Debug().Stringer("msg", msg).Msg("got new message")
	_ = h.drive(msg.toRound())
}

// Stop aborts the run. It has no effect once the protocol finished.
func (h *Handler) Stop() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	if h.finished {
		return
	}
	h.err = ErrStopped
	h.metrics.observeEnd(h.driver.ProtocolID(), statusStopped, time.Since(h.start).Seconds())
	h.log.Warn().Msg("stopped")
	h.finish()
}

// drive feeds inbound to the driver, then keeps driving it while it makes progress.
// Progress means it emitted messages, or it entered a new round.
func (h *Handler) drive(inbound ...*round.Message) error {
	for {
		before := h.driver.Number()
		outbound, done, err := h.driver.DriveRound(inbound...)
		inbound = nil
		if err != nil {
			return h.abort(err)
		}

		for _, msg := range outbound {
			if err = h.send(fromRound(h.driver.SSID(), h.driver.ProtocolID(), msg)); err != nil {
				return h.abort(err)
			}
		}

		if after := h.driver.Number(); after != before {
			now := time.Now()
			h.metrics.observeRound(h.driver.ProtocolID(), int(before), now.Sub(h.roundStart).Seconds())
			h.roundStart = now
			h.log.Info().Int("round", int(after)).Msg("round advanced")
		}

		if done {
			return h.complete()
		}
		if len(outbound) == 0 && h.driver.Number() == before {
			return nil
		}
	}
}

func (h *Handler) send(msg *Message) error {
	select {
	case h.out <- msg:
		h.metrics.observeMessage(h.driver.ProtocolID(), directionOut)
		return nil
	default:
		return ErrOutChanFull
	}
}

func (h *Handler) complete() error {
	result, err := h.driver.Result()
	if err != nil {
		return h.abort(err)
	}
	h.result = result
	h.metrics.observeRound(h.driver.ProtocolID(), int(h.driver.Number()), time.Since(h.roundStart).Seconds())
	h.metrics.observeEnd(h.driver.ProtocolID(), statusDone, time.Since(h.start).Seconds())
	h.log.Info().Dur("elapsed", time.Since(h.start)).Msg("done")
	h.finish()
	return nil
}

func (h *Handler) abort(err error) error {
	h.err = err
	var protocolErr *Error
	if errors.As(err, &protocolErr) {
		h.metrics.observeAbort(h.driver.ProtocolID(), protocolErr.Code)
		h.log.Error().
			Err(protocolErr.Err).
			Stringer("code", protocolErr.Code).
			Str("culprit", string(protocolErr.Culprit)).
			Int("round", int(protocolErr.RoundNumber)).
			Msg("protocol aborted")
	} else {
		h.log.Error().Err(err).Msg("protocol aborted")
	}
	h.metrics.observeEnd(h.driver.ProtocolID(), statusAborted, time.Since(h.start).Seconds())
	h.finish()
	return err
}

func (h *Handler) finish() {
	h.finished = true
	close(h.out)
	close(h.done)
}

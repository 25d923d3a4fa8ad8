package round

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/taurusgroup/threshold-ecdsa/internal/params"
	"github.com/taurusgroup/threshold-ecdsa/pkg/hash"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
	"github.com/taurusgroup/threshold-ecdsa/pkg/pool"
)

var (
	ErrNoRounds       = errors.New("round: no rounds bound")
	ErrAlreadyStarted = errors.New("round: rounds cannot be bound after the protocol started")
	ErrNoResult       = errors.New("round: final round did not produce a result")
)

// Context owns one protocol run for the local party.
//
// It holds the party directory, the session hash, the protocol state S and the bound rounds,
// and drives the rounds one after the other through DriveRound.
// A Context is not safe for concurrent use.
type Context[S State[S]] struct {
	info      Info
	directory *party.Directory
	state     S

	// ssid the unique identifier for this protocol execution
	ssid []byte
	hash *hash.Hash

	log zerolog.Logger

	constructors []func() Round[S]
	cursor       int
	started      bool
	// current is nil between rounds
	current Round[S]
	slots   []slot
	// queue holds messages for rounds after the current one
	queue []*Message
	// awaitingDelivery is set once the current round's messages were returned to the caller
	awaitingDelivery bool

	done   bool
	result interface{}
	err    *Error
}

type slot struct {
	raw      *Message
	parsed   bool
	verified bool
}

// New creates a Context for the local party of directory.
//
// The session hash binds the session ID, protocol ID, curve, party IDs and indices, the threshold,
// and any auxInfo; every proof and commitment of the run is salted with it.
func New[S State[S]](info Info, directory *party.Directory, state S, auxInfo ...hash.WriterToWithDomain) (*Context[S], error) {
	if directory == nil {
		return nil, errors.New("round: nil directory")
	}
	if err := info.Config.Validate(directory.N()); err != nil {
		return nil, err
	}

	h := hash.New()

	if info.Config.SessionID != nil {
		if err := h.WriteAny(&hash.BytesWithDomain{
			TheDomain: "Session ID",
			Bytes:     info.Config.SessionID,
		}); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	if err := h.WriteAny(&hash.BytesWithDomain{
		TheDomain: "Protocol ID",
		Bytes:     []byte(info.ProtocolID),
	}, &hash.BytesWithDomain{
		TheDomain: "Group Name",
		Bytes:     []byte(info.Config.Group.Name()),
	}); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	if err := h.WriteAny(directory.IDs()); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	for _, p := range directory.Parties() {
		if err := h.WriteAny(p.ID, p.Index); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	if err := h.WriteAny(&hash.BytesWithDomain{
		TheDomain: "Threshold",
		Bytes:     binary.BigEndian.AppendUint32(nil, uint32(info.Config.Threshold)),
	}); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	for _, a := range auxInfo {
		if a == nil {
			continue
		}
		if err := h.WriteAny(a); err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}

	return &Context[S]{
		info:      info,
		directory: directory,
		state:     state,
		ssid:      h.Clone().Sum(),
		hash:      h,
		log:       zerolog.Nop(),
	}, nil
}

// WithLogger sets the logger used to report the progress of the run.
func (c *Context[S]) WithLogger(log zerolog.Logger) *Context[S] {
	c.log = log.With().
		Str("protocol", c.info.ProtocolID).
		Str("party", string(c.directory.SelfID())).
		Logger()
	return c
}

// BindRounds installs the ordered sequence of rounds of the protocol.
// Each constructor returns a fresh Round, created when the protocol enters that step.
func (c *Context[S]) BindRounds(constructors ...func() Round[S]) error {
	if c.started {
		return ErrAlreadyStarted
	}
	if len(constructors) == 0 {
		return ErrNoRounds
	}
	if len(constructors) > params.MaxRounds {
		return fmt.Errorf("round: %d rounds exceeds the maximum of %d", len(constructors), params.MaxRounds)
	}
	c.constructors = constructors
	return nil
}

// DriveRound delivers inbound messages to the protocol and returns the messages produced
// by the round that completed, if any.
//
// Calling DriveRound again confirms that the previously returned messages were delivered,
// which allows the Context to enter the next round. The first call, usually without inbound
// messages, enters round 0.
// done is true once the final round completed, after which Result returns the output.
// Any failure is terminal: it is returned by this call and all later ones.
func (c *Context[S]) DriveRound(inbound ...*Message) (outbound []*Message, done bool, err error) {
	if c.err != nil {
		return nil, false, c.err
	}
	if c.done {
		return nil, true, nil
	}
	if len(c.constructors) == 0 {
		return nil, false, ErrNoRounds
	}

	switch {
	case !c.started:
		c.started = true
		if err = c.enter(); err != nil {
			return nil, false, err
		}
	case c.awaitingDelivery:
		c.awaitingDelivery = false
		c.cursor++
		if err = c.enter(); err != nil {
			return nil, false, err
		}
	}

	for _, msg := range inbound {
		if err = c.accept(msg); err != nil {
			return nil, false, err
		}
	}

	return c.advance()
}

// enter creates the round at the cursor and replays the messages queued for it.
func (c *Context[S]) enter() error {
	r := c.constructors[c.cursor]()
	if r.Number() != Number(c.cursor) {
		return c.abort(CodeCompute, "", fmt.Errorf("round at position %d has number %d", c.cursor, r.Number()))
	}
	c.current = r
	c.slots = make([]slot, c.directory.RemoteCount())
	r.Init(c)

	c.log.Debug().Int("round", c.cursor).Str("expects", r.Expects().String()).Msg("entering round")

	queued := c.queue
	c.queue = nil
	for _, msg := range queued {
		if err := c.accept(msg); err != nil {
			return err
		}
	}
	return nil
}

// accept routes a message to the current round, queues it, or drops it.
func (c *Context[S]) accept(msg *Message) error {
	if msg == nil {
		return c.abort(CodeDecode, "", errors.New("nil message"))
	}
	pos, ok := c.directory.Position(msg.From)
	if !ok {
		return c.abort(CodeInvalidPartyID, msg.From, errors.New("message from unknown party"))
	}
	if msg.To != "" && msg.To != c.directory.SelfID() {
		c.log.Warn().Str("from", string(msg.From)).Str("to", string(msg.To)).Msg("dropping message for another party")
		return nil
	}

	current := Number(c.cursor)
	switch {
	case msg.RoundNumber < current:
		c.log.Debug().Str("from", string(msg.From)).Uint16("msg_round", uint16(msg.RoundNumber)).Msg("dropping message for past round")
		return nil
	case msg.RoundNumber > c.FinalRoundNumber():
		return c.abort(CodeDecode, msg.From, fmt.Errorf("message for round %d beyond final round", msg.RoundNumber))
	case msg.RoundNumber > current || c.current == nil:
		for _, queued := range c.queue {
			if queued.From == msg.From && queued.RoundNumber == msg.RoundNumber {
				if queued.Equal(msg) {
					return nil
				}
				return c.abort(CodeVerification, msg.From, errors.New("conflicting message for future round"))
			}
		}
		c.queue = append(c.queue, msg)
		return nil
	}

	s := &c.slots[pos]
	if s.raw != nil {
		if s.raw.Equal(msg) {
			c.log.Debug().Str("from", string(msg.From)).Msg("ignoring duplicate message")
			return nil
		}
		return c.abort(CodeVerification, msg.From, errors.New("conflicting duplicate message"))
	}

	expected := c.current.Expects()
	if expected == KindNone {
		return c.abort(CodeDecode, msg.From, fmt.Errorf("round %d does not expect messages", c.cursor))
	}
	if k := msg.Kind(); k != expected {
		return c.abort(CodeDecode, msg.From, fmt.Errorf("got %s message, expected %s", k, expected))
	}

	s.raw = msg
	if err := c.current.ParseMessage(c, pos, msg); err != nil {
		return c.abort(CodeDecode, msg.From, err)
	}
	s.parsed = true

	if err := c.current.VerifyMessage(c, pos); err != nil {
		return c.abort(CodeVerification, msg.From, err)
	}
	s.verified = true

	c.log.Debug().Int("round", c.cursor).Str("from", string(msg.From)).Msg("verified message")
	return nil
}

// advance computes and finalizes the current round once every sender has been verified.
func (c *Context[S]) advance() ([]*Message, bool, error) {
	if c.current == nil {
		return nil, false, nil
	}
	if c.current.Expects() != KindNone {
		for _, s := range c.slots {
			if !s.verified {
				return nil, false, nil
			}
		}
	}

	if err := c.current.Compute(c); err != nil {
		return nil, false, c.abort(CodeCompute, "", err)
	}

	out := newOutbox()
	if err := c.current.Finalize(c, out); err != nil {
		return nil, false, c.abort(CodeCompute, "", err)
	}
	msgs, err := c.collect(out)
	if err != nil {
		return nil, false, c.abort(CodeCompute, "", err)
	}

	c.log.Debug().Int("round", c.cursor).Int("outbound", len(msgs)).Msg("round complete")

	// buffers of a round do not outlive it
	c.current = nil
	c.slots = nil

	if c.cursor == len(c.constructors)-1 {
		if c.result == nil {
			return nil, false, c.abort(CodeCompute, "", ErrNoResult)
		}
		c.done = true
		c.queue = nil
		c.log.Info().Msg("protocol done")
		return msgs, true, nil
	}

	c.awaitingDelivery = true
	return msgs, false, nil
}

// collect turns the content of out into messages addressed to remote parties.
func (c *Context[S]) collect(out *Outbox) ([]*Message, error) {
	self := c.directory.SelfID()
	number := Number(c.cursor + 1)

	for to := range out.p2p {
		if _, ok := c.directory.Position(to); !ok {
			return nil, fmt.Errorf("message addressed to unknown party %s", to)
		}
	}

	if len(out.p2p) == 0 {
		if out.broadcast == nil {
			return nil, nil
		}
		return []*Message{{
			RoundNumber: number,
			From:        self,
			Broadcast:   out.broadcast,
		}}, nil
	}

	msgs := make([]*Message, 0, len(out.p2p))
	for _, to := range c.directory.OtherIDs() {
		data, ok := out.p2p[to]
		if !ok {
			if out.broadcast != nil {
				return nil, fmt.Errorf("no P2P payload for %s alongside broadcast", to)
			}
			continue
		}
		msgs = append(msgs, &Message{
			RoundNumber: number,
			From:        self,
			To:          to,
			P2P:         data,
			Broadcast:   out.broadcast,
		})
	}
	return msgs, nil
}

// abort records the first failure of the run.
func (c *Context[S]) abort(code Code, culprit party.ID, err error) error {
	if c.err != nil {
		return c.err
	}
	e := &Error{Code: code, RoundNumber: Number(c.cursor), Culprit: culprit, Err: err}
	var roundErr *Error
	if errors.As(err, &roundErr) {
		e.Code = roundErr.Code
		if roundErr.Culprit != "" {
			e.Culprit = roundErr.Culprit
		}
		e.Err = roundErr.Err
	}
	c.err = e
	c.current = nil
	c.slots = nil
	c.queue = nil
	c.log.Error().Err(e.Err).
		Int("round", c.cursor).
		Str("code", e.Code.String()).
		Str("culprit", string(e.Culprit)).
		Msg("protocol aborted")
	return e
}

// Clone returns an independent copy of the Context.
//
// The directory and state are deep-copied. If a round is in progress, the copy enters a fresh
// instance of it and replays the messages the original has received so far.
func (c *Context[S]) Clone() *Context[S] {
	out := &Context[S]{
		info:             c.info,
		directory:        c.directory.Clone(),
		state:            c.state.Clone(),
		ssid:             append([]byte(nil), c.ssid...),
		hash:             c.hash.Clone(),
		log:              c.log,
		constructors:     c.constructors,
		cursor:           c.cursor,
		started:          c.started,
		awaitingDelivery: c.awaitingDelivery,
		done:             c.done,
		result:           c.result,
		err:              c.err,
	}
	if c.current != nil {
		for _, s := range c.slots {
			if s.raw != nil {
				out.queue = append(out.queue, s.raw)
			}
		}
	}
	out.queue = append(out.queue, c.queue...)
	if c.current != nil {
		_ = out.enter()
	}
	return out
}

// SetResult records the output of the protocol. It is called by the final round.
func (c *Context[S]) SetResult(result interface{}) {
	c.result = result
}

// Result returns the output of the protocol once it is done, or the error that aborted it.
func (c *Context[S]) Result() (interface{}, error) {
	if c.err != nil {
		return nil, c.err
	}
	if !c.done {
		return nil, errors.New("round: protocol not done")
	}
	return c.result, nil
}

// Err returns the error that aborted the run, or nil.
func (c *Context[S]) Err() error {
	if c.err == nil {
		return nil
	}
	return c.err
}

// Done returns true once the final round completed.
func (c *Context[S]) Done() bool { return c.done }

// State returns the protocol state.
func (c *Context[S]) State() S { return c.state }

// Directory returns the party directory.
func (c *Context[S]) Directory() *party.Directory { return c.directory }

// Logger returns the logger of the run.
func (c *Context[S]) Logger() *zerolog.Logger { return &c.log }

// HashForID returns a clone of the hash.Hash for this session, initialized with the given id.
func (c *Context[S]) HashForID(id party.ID) *hash.Hash {
	cloned := c.hash.Clone()
	if id != "" {
		_ = cloned.WriteAny(id)
	}
	return cloned
}

// UpdateHashState writes additional data to the hash state.
func (c *Context[S]) UpdateHashState(value hash.WriterToWithDomain) {
	_ = c.hash.WriteAny(value)
}

// Hash returns copy of the hash function of this protocol execution.
func (c *Context[S]) Hash() *hash.Hash { return c.hash.Clone() }

// SSID the unique identifier for this protocol execution.
func (c *Context[S]) SSID() []byte { return c.ssid }

// ProtocolID is an identifier for this protocol.
func (c *Context[S]) ProtocolID() string { return c.info.ProtocolID }

// Number returns the number of the current round.
func (c *Context[S]) Number() Number { return Number(c.cursor) }

// FinalRoundNumber is the number of the last round.
func (c *Context[S]) FinalRoundNumber() Number { return Number(len(c.constructors) - 1) }

// SelfID is this party's ID.
func (c *Context[S]) SelfID() party.ID { return c.directory.SelfID() }

// PartyIDs is a sorted slice of participating parties in this protocol.
func (c *Context[S]) PartyIDs() party.IDSlice { return c.directory.IDs() }

// OtherPartyIDs returns a sorted list of parties that does not contain SelfID.
func (c *Context[S]) OtherPartyIDs() party.IDSlice { return c.directory.OtherIDs() }

// Threshold is the number of shares needed to reconstruct the secret.
func (c *Context[S]) Threshold() int { return c.info.Config.Threshold }

// N returns the number of participants.
func (c *Context[S]) N() int { return c.directory.N() }

// Group returns the curve used for this protocol.
func (c *Context[S]) Group() curve.Curve { return c.info.Config.Group }

// Pool returns the worker pool of the session, which may be nil.
func (c *Context[S]) Pool() *pool.Pool { return c.info.Config.Pool }

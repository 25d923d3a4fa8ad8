package round

// State is the protocol specific data carried by a Context from one round to the next.
type State[S any] interface {
	// Clone returns a deep copy of the state.
	Clone() S
}

// Round is a single step of a protocol, operating on a Context whose state has type S.
//
// The Context calls the methods in a fixed order:
//
//  1. Init, once when the round is entered.
//  2. ParseMessage then VerifyMessage, once per expected remote sender, in any sender order.
//  3. Compute, once, after VerifyMessage succeeded for every sender.
//  4. Finalize, once, after Compute succeeded.
//
// A Round must not keep a reference to the Context between calls.
type Round[S State[S]] interface {
	// Number returns the position of the round in the protocol, starting from 0.
	Number() Number

	// Expects returns the kind of message this round receives from every remote party.
	// Rounds returning KindNone are only computed and finalized.
	Expects() Kind

	// Init allocates the per-sender buffers, one slot per remote party.
	Init(c *Context[S])

	// ParseMessage decodes the message from the remote party at position from
	// into its buffer slot.
	ParseMessage(c *Context[S], from int, msg *Message) error

	// VerifyMessage validates the parsed message of the remote party at position from
	// against locally known data. It must not depend on other senders' messages of the same round.
	VerifyMessage(c *Context[S], from int) error

	// Compute performs the joint computation of the round.
	// Rounds with nothing to compute return nil.
	Compute(c *Context[S]) error

	// Finalize writes the round's outgoing payloads to out.
	Finalize(c *Context[S], out *Outbox) error
}

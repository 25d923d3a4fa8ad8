package dkg

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
)

// round1 collects the commitments of all parties.
type round1 struct {
	msgs []*broadcast1
}

func (*round1) Number() round.Number { return 1 }

func (*round1) Expects() round.Kind { return round.KindBroadcast }

func (r *round1) Init(c *round.Context[*state]) {
	r.msgs = make([]*broadcast1, c.Directory().RemoteCount())
}

func (r *round1) ParseMessage(c *round.Context[*state], from int, msg *round.Message) error {
	body := emptyBroadcast1(c.Group())
	if err := round.Decode(msg.Broadcast, body); err != nil {
		return err
	}
	if err := body.validate(); err != nil {
		return err
	}
	r.msgs[from] = body
	return nil
}

// VerifyMessage checks the session and index of the sender, and stores its commitment.
func (r *round1) VerifyMessage(c *round.Context[*state], from int) error {
	body := r.msgs[from]
	if !bytes.Equal(body.SID, c.SSID()) {
		return errors.New("wrong session ID")
	}
	if !body.Index.Equal(c.Directory().Remote(from).Index) {
		return errors.New("wrong index")
	}
	if err := body.Commitment.Validate(); err != nil {
		return fmt.Errorf("commitment: %w", err)
	}
	c.State().commitments[from] = body.Commitment
	return nil
}

// Compute has nothing to do: the commitments are opened in the next round.
func (*round1) Compute(*round.Context[*state]) error { return nil }

// Finalize broadcasts the opening of our commitment, and sends f(index_l) to each party l.
func (*round1) Finalize(c *round.Context[*state], out *round.Outbox) error {
	s := c.State()
	if err := out.Broadcast(s.opening); err != nil {
		return err
	}
	for _, id := range c.OtherPartyIDs() {
		if err := out.Send(id, &message2{
			SID:   c.SSID(),
			Share: s.sharesOut[id],
		}); err != nil {
			return err
		}
	}
	return nil
}

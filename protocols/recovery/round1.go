package recovery

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
)

// round1 receives the commitment of the partner.
type round1 struct {
	msg *message1
}

func (*round1) Number() round.Number { return 1 }

func (*round1) Expects() round.Kind { return round.KindP2P }

func (*round1) Init(*round.Context[*state]) {}

func (r *round1) ParseMessage(_ *round.Context[*state], _ int, msg *round.Message) error {
	body := &message1{}
	if err := round.Decode(msg.P2P, body); err != nil {
		return err
	}
	r.msg = body
	return nil
}

func (r *round1) VerifyMessage(c *round.Context[*state], _ int) error {
	if !bytes.Equal(r.msg.SID, c.SSID()) {
		return errors.New("wrong session ID")
	}
	if err := r.msg.Commitment.Validate(); err != nil {
		return fmt.Errorf("commitment: %w", err)
	}
	c.State().peerCommitment = r.msg.Commitment
	return nil
}

// Compute has nothing to do: the commitment is opened in the next round.
func (*round1) Compute(*round.Context[*state]) error { return nil }

func (*round1) Finalize(c *round.Context[*state], out *round.Outbox) error {
	return out.Send(partner(c).ID, c.State().opening)
}

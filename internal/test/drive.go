package test

import (
	"errors"

	"github.com/taurusgroup/threshold-ecdsa/internal/round"
	"github.com/taurusgroup/threshold-ecdsa/pkg/party"
)

const maxIterations = 64

var ErrStalled = errors.New("test: protocol stalled")

// Rule is applied to every message before it is delivered.
// Returning nil drops the message.
type Rule func(msg *round.Message) *round.Message

// Drive runs all drivers in lockstep on the calling goroutine, delivering every outbound message
// to its recipients on the next iteration.
//
// A driver that fails is left aside while the others keep running, so that callers can inspect
// the error of every party. Drive returns once no driver can make progress, with the first error
// encountered, or ErrStalled if some driver is neither done nor failed.
func Drive(drivers []round.Driver, rule Rule) error {
	var first error
	inbox := make(map[party.ID][]*round.Message, len(drivers))
	for i := 0; i < maxIterations; i++ {
		active := false
		for _, d := range drivers {
			if d.Done() || d.Err() != nil {
				continue
			}
			active = true

			id := d.SelfID()
			in := inbox[id]
			inbox[id] = nil
			out, _, err := d.DriveRound(in...)
			if err != nil {
				if first == nil {
					first = err
				}
				continue
			}
			for _, msg := range out {
				if rule != nil {
					if msg = rule(msg); msg == nil {
						continue
					}
				}
				for _, other := range drivers {
					if otherID := other.SelfID(); msg.IsFor(otherID) {
						inbox[otherID] = append(inbox[otherID], msg)
					}
				}
			}
		}
		if !active {
			return first
		}
	}
	if first != nil {
		return first
	}
	return ErrStalled
}

package round

import (
	"encoding/binary"
	"io"
)

// Number is the index of the current round.
// Rounds are numbered from 0, and a message carries the number of the round that consumes it.
type Number uint16

// WriteTo implements io.WriterTo interface.
func (n Number) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, uint16(n))
	written, err := w.Write(buf)
	return int64(written), err
}

// Domain implements hash.WriterToWithDomain.
func (Number) Domain() string { return "Round Number" }

package party

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/taurusgroup/threshold-ecdsa/pkg/math/curve"
)

// PointMap associates a curve.Point to each party.ID.
type PointMap struct {
	group  curve.Curve
	Points map[ID]curve.Point
}

// NewPointMap creates a PointMap from a map of points.
func NewPointMap(points map[ID]curve.Point) *PointMap {
	var group curve.Curve
	for _, v := range points {
		group = v.Curve()
		break
	}
	return &PointMap{group: group, Points: points}
}

// EmptyPointMap creates an empty PointMap with a fixed group, ready to be unmarshalled.
//
// This needs to be used before unmarshalling, in order to initialize the points.
func EmptyPointMap(group curve.Curve) *PointMap {
	return &PointMap{group: group, Points: make(map[ID]curve.Point)}
}

// IDs returns the sorted set of IDs in the map.
func (m *PointMap) IDs() IDSlice {
	ids := make([]ID, 0, len(m.Points))
	for id := range m.Points {
		ids = append(ids, id)
	}
	return NewIDSlice(ids)
}

// Copy returns a deep copy of the map.
func (m *PointMap) Copy() *PointMap {
	points := make(map[ID]curve.Point, len(m.Points))
	for id, p := range m.Points {
		points[id] = m.group.NewPoint().Set(p)
	}
	return &PointMap{group: m.group, Points: points}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m *PointMap) MarshalBinary() ([]byte, error) {
	encoded := make(map[ID][]byte, len(m.Points))
	for id, p := range m.Points {
		data, err := p.MarshalBinary()
		if err != nil {
			return nil, err
		}
		encoded[id] = data
	}
	return cbor.Marshal(encoded)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *PointMap) UnmarshalBinary(data []byte) error {
	if m.group == nil {
		return errors.New("PointMap.UnmarshalBinary called without setting a group")
	}
	var encoded map[ID][]byte
	if err := cbor.Unmarshal(data, &encoded); err != nil {
		return err
	}
	m.Points = make(map[ID]curve.Point, len(encoded))
	for id, b := range encoded {
		p := m.group.NewPoint()
		if err := p.UnmarshalBinary(b); err != nil {
			return fmt.Errorf("PointMap: point for %s: %w", id, err)
		}
		m.Points[id] = p
	}
	return nil
}

// WriteTo implements io.WriterTo, writing the points in the order of their IDs.
func (m *PointMap) WriteTo(w io.Writer) (int64, error) {
	if m == nil {
		return 0, io.ErrUnexpectedEOF
	}
	total := int64(0)
	for _, id := range m.IDs() {
		n, err := id.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
		data, err := m.Points[id].MarshalBinary()
		if err != nil {
			return total, err
		}
		n0, err := w.Write(data)
		total += int64(n0)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Domain implements hash.WriterToWithDomain.
func (*PointMap) Domain() string {
	return "PointMap"
}

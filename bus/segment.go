package bus

import "github.com/ardnew/softi2c/pkg"

// Direction is the transfer direction of one segment.
type Direction uint8

// Segment directions.
const (
	Transmit Direction = iota // Master to slave
	Receive                   // Slave to master
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case Transmit:
		return "tx"
	case Receive:
		return "rx"
	default:
		return "unknown"
	}
}

// IRQCallback is invoked in interrupt context when a segment's physical
// transfer finishes. It must not block, and no event filtering is applied.
type IRQCallback func(s *Segment, ev pkg.Event)

// Segment is one directional leg of a transaction. A transaction chains
// segments into a singly linked list executed strictly in append order;
// the owning transaction holds the only references.
//
// The optional interrupt callback allows a transfer to be adjusted on the
// fly, for example reading a length byte and then sizing the following
// segment.
type Segment struct {
	buf   Buffer
	dir   Direction
	next  *Segment
	irqCB IRQCallback
}

// Set stores the segment payload; see [Buffer.Set] for the storage-mode
// selection.
func (s *Segment) Set(p []byte) {
	s.buf.Set(p)
}

// SetLength prepares a pointer-free payload of n bytes; see
// [Buffer.SetLength].
func (s *Segment) SetLength(n int) {
	s.buf.SetLength(n)
}

// Bytes returns the segment payload.
func (s *Segment) Bytes() []byte {
	return s.buf.Bytes()
}

// Len returns the payload length.
func (s *Segment) Len() int {
	return s.buf.Len()
}

// IsInline reports whether the payload is stored inside the segment.
func (s *Segment) IsInline() bool {
	return s.buf.IsInline()
}

// SetDir sets the transfer direction.
func (s *Segment) SetDir(d Direction) {
	s.dir = d
}

// Dir returns the transfer direction.
func (s *Segment) Dir() Direction {
	return s.dir
}

// SetNext appends the following segment.
func (s *Segment) SetNext(next *Segment) {
	s.next = next
}

// Next returns the following segment, or nil at the chain tail.
func (s *Segment) Next() *Segment {
	return s.next
}

// SetIRQCallback installs the interrupt-context completion callback.
// This should typically be left nil.
func (s *Segment) SetIRQCallback(cb IRQCallback) {
	s.irqCB = cb
}

// CallIRQCallback invokes the attached callback, if any, with the event
// that completed this segment's transfer. Interrupt context only.
func (s *Segment) CallIRQCallback(ev pkg.Event) {
	if s.irqCB != nil {
		s.irqCB(s, ev)
	}
}

// reset returns the segment to its zero state for pool reuse.
func (s *Segment) reset() {
	*s = Segment{}
}

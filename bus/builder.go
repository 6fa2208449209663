package bus

import "github.com/ardnew/softi2c/pkg"

// Builder constructs one transaction fluently:
//
//	err := m.Transfer(0x50).
//		Tx([]byte{0x00, 0x10}).
//		RxLen(4).
//		On(pkg.EventAll, done).
//		Apply()
//
// A builder is bound to one master and one target address. Apply commits
// the transaction to the resource manager exactly once; construction
// errors (allocation failure, handler overflow) are deferred and returned
// from Apply, so chains never need intermediate error checks. Builders
// must not be shared between goroutines.
type Builder struct {
	master *Master
	xact   *Transaction

	err    error
	posted bool
	rc     error
}

func newBuilder(m *Master, addr uint16, hz uint32, mode AllocMode) *Builder {
	b := &Builder{master: m}
	b.xact = m.newTransaction(addr, hz, mode)
	if b.xact == nil {
		b.err = pkg.ErrAllocation
	}
	return b
}

// newSegment appends one segment, recording allocation failure for Apply.
// The returned segment is never nil so chains stay panic-free.
func (b *Builder) newSegment(dir Direction) *Segment {
	if b.xact == nil {
		return &Segment{}
	}
	s := b.xact.NewSegment()
	if s == nil {
		if b.err == nil {
			b.err = pkg.ErrAllocation
		}
		return &Segment{}
	}
	s.SetDir(dir)
	return s
}

// Tx appends a transmit segment carrying p. Short payloads are copied
// into the segment; see [Buffer.Set].
func (b *Builder) Tx(p []byte) *Builder {
	b.newSegment(Transmit).Set(p)
	return b
}

// Rx appends a receive segment delivering into p. For payloads at or
// below [InlineSize] the hardware receives into the segment's inline
// storage; the builder installs an interrupt callback that copies the
// result back to p on completion, so p is filled either way.
func (b *Builder) Rx(p []byte) *Builder {
	s := b.newSegment(Receive)
	s.Set(p)
	if s.IsInline() {
		s.SetIRQCallback(func(s *Segment, ev pkg.Event) {
			if ev.IsComplete() {
				copy(p, s.Bytes())
			}
		})
	}
	return b
}

// RxLen appends a pointer-free receive segment of n bytes. The received
// bytes are read from the segment (via [Transaction.Root] and
// [Segment.Bytes]) in a completion handler.
func (b *Builder) RxLen(n int) *Builder {
	b.newSegment(Receive).SetLength(n)
	return b
}

// OnIRQ installs an interrupt-context callback on the most recently
// appended segment. The callback must not block. A callback the builder
// itself installed (the inline-receive copy-back of [Builder.Rx]) is
// preserved and runs first.
func (b *Builder) OnIRQ(cb IRQCallback) *Builder {
	if b.xact == nil || b.xact.tail == nil || cb == nil {
		return b
	}
	s := b.xact.tail
	if prev := s.irqCB; prev != nil {
		s.SetIRQCallback(func(seg *Segment, ev pkg.Event) {
			prev(seg, ev)
			cb(seg, ev)
		})
		return b
	}
	s.SetIRQCallback(cb)
	return b
}

// On installs a completion handler for the events in mask. Overflowing
// the fixed handler registry is reported by Apply as
// pkg.ErrHandlersFull.
func (b *Builder) On(mask pkg.Event, cb EventCallback) *Builder {
	if b.xact != nil && !b.xact.On(mask, cb) {
		if b.err == nil {
			b.err = pkg.ErrHandlersFull
		}
	}
	return b
}

// RepeatedStart suppresses the stop condition after the final segment, so
// the next queued transaction continues without releasing the bus.
func (b *Builder) RepeatedStart() *Builder {
	if b.xact != nil {
		b.xact.repeated = true
	}
	return b
}

// Clock overrides the bus clock rate for this transaction only.
func (b *Builder) Clock(hz uint32) *Builder {
	if b.xact != nil {
		b.xact.clock = hz
	}
	return b
}

// Apply commits the transaction to the resource manager. It is
// idempotent: the first call posts and caches the result, later calls
// return it. On any synchronous failure the transaction is released and
// no completion handler runs.
func (b *Builder) Apply() error {
	if b.posted {
		return b.rc
	}
	b.posted = true

	if b.err != nil {
		b.master.free(b.xact)
		b.xact = nil
		b.rc = b.err
		return b.rc
	}

	b.rc = b.master.Post(b.xact)
	if b.rc != nil {
		pkg.LogDebug(pkg.ComponentBuilder, "apply rejected",
			"addr", b.xact.addr, "error", b.rc)
		b.master.free(b.xact)
		b.xact = nil
	}
	return b.rc
}

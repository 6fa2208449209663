package bus

import "github.com/ardnew/softi2c/pkg"

// MaxEventHandlers is the number of completion handler slots per
// transaction. The registry is fixed-capacity so that terminal event
// dispatch never allocates.
const MaxEventHandlers = 4

// EventCallback is a transaction completion handler. It runs in task
// context, after every segment of the transaction has completed or the
// transaction has errored, and before the transaction is released.
type EventCallback func(t *Transaction, ev pkg.Event)

// eventHandler is one slot of the fixed handler registry.
type eventHandler struct {
	cb   EventCallback
	mask pkg.Event
}

func (h *eventHandler) active() bool {
	return h.cb != nil && h.mask != 0
}

// AllocMode records which allocator produced a transaction, so release is
// always symmetric with allocation.
type AllocMode uint8

// Allocation modes.
const (
	AllocHeap AllocMode = iota // General allocation, task context only
	AllocPool                  // Fixed pools, safe from interrupt context
)

// String returns a human-readable mode name.
func (m AllocMode) String() string {
	switch m {
	case AllocHeap:
		return "heap"
	case AllocPool:
		return "pool"
	default:
		return "unknown"
	}
}

// allocator provides transaction and segment storage for one issuing
// master handle. The bus core releases every transaction through the
// allocator that produced it.
type allocator interface {
	newSegment(mode AllocMode) *Segment
	freeSegment(s *Segment, mode AllocMode)
	free(t *Transaction)
}

// Transaction is an addressed, ordered chain of segments posted to a
// resource manager as one arbitration unit. It is allocated by a [Master],
// populated by a [Builder], consumed by a [Manager], and released through
// its issuer after all matching handlers have run.
type Transaction struct {
	next *Transaction // Queue link, guarded by the manager's critical section

	addr     uint16
	clock    uint32
	repeated bool
	mode     AllocMode

	root    *Segment // First segment; nil for address-presence probes
	tail    *Segment // Chain tail during construction
	current *Segment // Segment in flight or about to start

	issuer allocator
	posted bool

	handlers [MaxEventHandlers]eventHandler
}

// NewSegment allocates a segment in the transaction's allocation mode and
// appends it to the segment chain. It returns nil on allocation failure,
// or if the transaction has already been posted.
func (t *Transaction) NewSegment() *Segment {
	if t.posted {
		pkg.LogWarn(pkg.ComponentMaster, "segment requested after post",
			"addr", t.addr)
		return nil
	}
	s := t.issuer.newSegment(t.mode)
	if s == nil {
		return nil
	}
	s.SetNext(nil)
	if t.root == nil {
		t.root = s
	} else {
		t.tail.SetNext(s)
	}
	t.tail = s
	return s
}

// Append links other at the tail of the transaction queue chain. The
// caller must hold the owning manager's critical section: the tail walk
// and the link write are atomic with respect to interrupt-context queue
// consumption.
func (t *Transaction) Append(other *Transaction) {
	last := t
	for last.next != nil {
		last = last.next
	}
	last.next = other
}

// On installs a completion handler for the events in mask. It returns
// false when all handler slots are taken.
func (t *Transaction) On(mask pkg.Event, cb EventCallback) bool {
	if cb == nil || mask == pkg.EventNone {
		return false
	}
	for i := range t.handlers {
		if !t.handlers[i].active() {
			t.handlers[i] = eventHandler{cb: cb, mask: mask}
			return true
		}
	}
	return false
}

// CallIRQCallback forwards ev to the current segment's interrupt
// callback, if any. Called once per physical sub-transfer completion,
// strictly from interrupt context.
func (t *Transaction) CallIRQCallback(ev pkg.Event) {
	if t.current != nil {
		t.current.CallIRQCallback(ev)
	}
}

// AdvanceSegment moves the cursor to the next segment and reports whether
// a segment remains. The terminality decision of the event state machine
// is computed from this result, which keeps zero-segment transactions
// completing correctly.
func (t *Transaction) AdvanceSegment() bool {
	if t.current == nil {
		return false
	}
	t.current = t.current.Next()
	return t.current != nil
}

// ProcessEvent fires every installed handler whose mask intersects ev.
// Handlers are not mutually exclusive; more than one may fire for a
// single terminal event. Task context only.
func (t *Transaction) ProcessEvent(ev pkg.Event) {
	for i := range t.handlers {
		if t.handlers[i].active() && ev.Matches(t.handlers[i].mask) {
			t.handlers[i].cb(t, ev)
		}
	}
}

// ResetCurrent rewinds the cursor to the first segment.
func (t *Transaction) ResetCurrent() {
	t.current = t.root
}

// Addr returns the target address.
func (t *Transaction) Addr() uint16 { return t.addr }

// Clock returns the bus clock rate for this transaction.
func (t *Transaction) Clock() uint32 { return t.clock }

// Repeated reports whether the transaction suppresses the trailing stop
// condition.
func (t *Transaction) Repeated() bool { return t.repeated }

// Mode returns the allocation mode.
func (t *Transaction) Mode() AllocMode { return t.mode }

// Root returns the first segment, or nil for a zero-segment transaction.
func (t *Transaction) Root() *Segment { return t.root }

// Current returns the cursor segment.
func (t *Transaction) Current() *Segment { return t.current }

// Next returns the next queued transaction.
func (t *Transaction) Next() *Transaction { return t.next }

// reset returns the transaction to its zero state for pool reuse.
func (t *Transaction) reset() {
	*t = Transaction{}
}

package bus

import (
	"sync"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// Scheduler is the task-context deferral sink consumed by the manager.
// Post queues fn to run once, later, in task context, preserving
// submission order; it must never block the caller. It reports false if
// the callback was dropped (for example, after the scheduler stopped).
//
// [github.com/ardnew/softi2c/sched.Loop] implements Scheduler.
type Scheduler interface {
	Post(fn func()) bool
}

// Backend is the contract a concrete resource manager supplies to drive
// one kind of I2C master (on-chip controller, bit-banged, bridged).
//
// StartTransaction, StartSegment, PowerUp, and PowerDown are invoked with
// the manager's critical section held; they must not block, re-enter the
// manager, or perform unbounded work. ValidateTransaction and Init are
// invoked from task context without the critical section.
type Backend interface {
	// Init binds the backend to a pin pair. Re-initialization with the
	// same pins succeeds idempotently.
	Init(sda, scl hal.Pin) error

	// StartTransaction configures the bus clock for the head
	// transaction, rewinds its cursor, and starts its first transfer.
	StartTransaction() error

	// StartSegment issues the asynchronous transfer for the head
	// transaction's current segment.
	StartSegment() error

	// ValidateTransaction rejects transactions the backend cannot
	// service.
	ValidateTransaction(t *Transaction) error

	// PowerUp powers the controller for a non-empty queue.
	PowerUp() error

	// PowerDown powers the controller down once the queue drains.
	PowerDown() error
}

// Manager owns the transaction queue of one logical I2C port and
// guarantees mutually exclusive access to the underlying master by
// serializing transactions. It implements the event-processing state
// machine shared by every backend; hardware-specific steps are delegated
// to the [Backend].
//
// The queue head is the only state shared between task and interrupt
// context. Every access occurs inside the critical section, which models
// masking the controller's interrupt.
//
// A Manager must not be copied after first use.
type Manager struct {
	backend Backend
	sched   Scheduler

	mu     sync.Mutex
	queue  *Transaction // Guarded by mu
	closed bool
}

// attach wires the manager to its backend and deferral sink. Called once
// by the concrete manager's constructor.
func (m *Manager) attach(b Backend, s Scheduler) {
	m.backend = b
	m.sched = s
}

// head returns the queued head transaction. Requires mu held.
func (m *Manager) head() *Transaction {
	return m.queue
}

// Post validates t and adds it to the transaction queue. If the port is
// idle the controller is powered up and the transaction started
// immediately; otherwise it is linked at the tail behind the in-flight
// transaction.
//
// Errors are returned synchronously and no completion handler ever fires
// for a rejected transaction; on error, t is not consumed and remains the
// caller's to release.
func (m *Manager) Post(t *Transaction) error {
	if t == nil {
		return pkg.ErrNullTransaction
	}
	if err := m.backend.ValidateTransaction(t); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return pkg.ErrStopped
	}

	t.posted = true
	if m.queue != nil {
		m.queue.Append(t)
		pkg.LogDebug(pkg.ComponentManager, "transaction queued",
			"addr", t.addr)
		return nil
	}

	m.queue = t
	if err := m.backend.PowerUp(); err != nil {
		m.queue = nil
		t.posted = false
		return err
	}
	if err := m.backend.StartTransaction(); err != nil {
		// The queue was empty, so a start failure here is a backend
		// defect (see ProcessEvent for the in-flight path).
		pkg.LogError(pkg.ComponentManager, "start on idle port failed",
			"addr", t.addr, "error", err)
		m.queue = nil
		t.posted = false
		m.backend.PowerDown()
		return err
	}
	pkg.LogDebug(pkg.ComponentManager, "transaction started",
		"addr", t.addr)
	return nil
}

// ProcessEvent is the interrupt-context entry point, called once per
// hardware-generated event. It fires the current segment's interrupt
// callback, advances the segment cursor, and either starts the next
// segment, or retires the head transaction and starts the next queued
// one. Terminal handler invocation is deferred to the scheduler; user
// code of unbounded duration never runs on the interrupt stack.
func (m *Manager) ProcessEvent(ev pkg.Event) {
	m.mu.Lock()
	t := m.queue
	m.mu.Unlock()
	if t == nil {
		// Spurious interrupt, or an event raced a Close. Defect either way.
		pkg.LogError(pkg.ComponentManager, "event with empty queue",
			"event", ev.String())
		return
	}

	t.CallIRQCallback(ev)

	m.mu.Lock()
	defer m.mu.Unlock()

	// The lock was dropped across the callback; a Close in that window has
	// already freed t, and no handler may fire for it.
	if m.closed || m.queue != t {
		return
	}

	// Advance first; terminality is computed from the result so that
	// zero-segment transactions retire on their sole completion event.
	remaining := t.AdvanceSegment()

	if ev.IsError() || (ev.IsComplete() && !remaining) {
		m.deferEvent(t, ev)
		m.queue = t.next
		t.next = nil
		if m.queue != nil {
			if err := m.backend.StartTransaction(); err != nil {
				// Internal retry signal that must not occur: the
				// controller just completed a transfer.
				pkg.LogError(pkg.ComponentManager, "start of next transaction failed",
					"error", err)
			}
		} else {
			m.backend.PowerDown()
		}
		return
	}

	if remaining {
		if err := m.backend.StartSegment(); err != nil {
			pkg.LogError(pkg.ComponentManager, "start of next segment failed",
				"error", err)
		}
	}
}

// deferEvent hands the terminal event off to task context. Requires mu held.
func (m *Manager) deferEvent(t *Transaction, ev pkg.Event) {
	if m.sched.Post(func() { m.handleEvent(t, ev) }) {
		return
	}
	// Scheduler gone: release without running handlers, as in Close.
	pkg.LogWarn(pkg.ComponentManager, "scheduler rejected terminal event",
		"addr", t.addr, "event", ev.String())
	t.issuer.free(t)
}

// handleEvent runs in task context. It fires all matching handlers and
// then releases the transaction through its issuer; this ordering
// guarantees no handler races the transaction's own release, and that a
// pool entry is not recycled while a handler still reads the payload.
func (m *Manager) handleEvent(t *Transaction, ev pkg.Event) {
	t.ProcessEvent(ev)
	t.issuer.free(t)
}

// Close drains the queue, releasing every queued transaction through its
// issuer without running any handlers. Shutdown is a hard abort, not a
// graceful completion. The manager accepts no further transactions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true

	n := 0
	for t := m.queue; t != nil; n++ {
		next := t.next
		t.next = nil
		t.issuer.free(t)
		t = next
	}
	m.queue = nil
	m.backend.PowerDown()

	if n > 0 {
		pkg.LogInfo(pkg.ComponentManager, "closed with queued transactions",
			"dropped", n)
	}
}

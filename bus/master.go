package bus

import (
	"sync"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// Resource is the view of a resource manager a master handle needs.
// *HWManager implements it.
type Resource interface {
	Init(sda, scl hal.Pin) error
	Post(t *Transaction) error
	Close()
}

// Master is a client handle for communicating with I2C slave devices
// through one resource manager. Multiple masters may share a manager;
// their transactions are serialized by the manager's queue.
type Master struct {
	rm       Resource
	sda, scl hal.Pin
	bound    bool

	mu    sync.Mutex
	clock uint32

	txPool  *TransactionPool
	segPool *SegmentPool
}

// Option configures a Master.
type Option func(*Master)

// WithClock sets the default bus clock rate for transactions issued by
// this master.
func WithClock(hz uint32) Option {
	return func(m *Master) { m.clock = hz }
}

// WithTransactionPool supplies the fixed pool backing interrupt-safe
// transaction construction.
func WithTransactionPool(p *TransactionPool) Option {
	return func(m *Master) { m.txPool = p }
}

// WithSegmentPool supplies the fixed pool backing interrupt-safe segment
// construction.
func WithSegmentPool(p *SegmentPool) Option {
	return func(m *Master) { m.segPool = p }
}

// New creates a master handle bound to rm and the given pin pair. The
// manager's pin binding rules apply: the first master binds the
// controller, later masters must name the same pins.
func New(rm Resource, sda, scl hal.Pin, opts ...Option) (*Master, error) {
	if rm == nil {
		return nil, pkg.ErrInvalidMaster
	}
	m := &Master{
		rm:    rm,
		sda:   sda,
		scl:   scl,
		clock: hal.DefaultClock,
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := rm.Init(sda, scl); err != nil {
		return nil, err
	}
	m.bound = true
	pkg.LogDebug(pkg.ComponentMaster, "master bound",
		"sda", sda.String(), "scl", scl.String(), "clock", m.clock)
	return m, nil
}

// SetClock sets the default bus clock rate for subsequent transfers.
// In-flight transactions keep the rate they were built with.
func (m *Master) SetClock(hz uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = hz
}

// Clock returns the default bus clock rate.
func (m *Master) Clock() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clock
}

// Transfer starts building a heap-allocated transaction addressed to
// addr. Task context only. The builder must be finished with
// [Builder.Apply].
func (m *Master) Transfer(addr uint16) *Builder {
	return newBuilder(m, addr, m.Clock(), AllocHeap)
}

// TransferIRQSafe starts building a pool-allocated transaction addressed
// to addr, safe to construct from interrupt context. Requires the master
// to have been created with [WithTransactionPool] and [WithSegmentPool];
// exhaustion surfaces as pkg.ErrAllocation at Apply.
func (m *Master) TransferIRQSafe(addr uint16) *Builder {
	return newBuilder(m, addr, m.Clock(), AllocPool)
}

// WithTransfer builds a transaction in build and applies it when build
// returns, guaranteeing the constructed transaction is never dropped
// unposted. It returns the result of the apply.
func (m *Master) WithTransfer(addr uint16, build func(b *Builder)) error {
	b := m.Transfer(addr)
	if build != nil {
		build(b)
	}
	return b.Apply()
}

// WithTransferIRQSafe is the pool-mode form of [Master.WithTransfer]: the
// transaction is built from the fixed pools and applied when build
// returns, so it is safe to use from interrupt context and is never
// dropped unposted. Pool exhaustion surfaces as pkg.ErrAllocation.
func (m *Master) WithTransferIRQSafe(addr uint16, build func(b *Builder)) error {
	b := m.TransferIRQSafe(addr)
	if build != nil {
		build(b)
	}
	return b.Apply()
}

// Post hands a built transaction to the resource manager. On a
// synchronous error the transaction was not consumed.
func (m *Master) Post(t *Transaction) error {
	if !m.bound {
		return pkg.ErrInvalidMaster
	}
	return m.rm.Post(t)
}

// newTransaction allocates a transaction in the given mode; nil on pool
// exhaustion or when the required pool was not supplied.
func (m *Master) newTransaction(addr uint16, hz uint32, mode AllocMode) *Transaction {
	var t *Transaction
	switch mode {
	case AllocPool:
		if m.txPool == nil {
			return nil
		}
		t = m.txPool.Get()
		if t == nil {
			return nil
		}
	default:
		t = &Transaction{}
	}
	t.addr = addr
	t.clock = hz
	t.mode = mode
	t.issuer = m
	return t
}

// newSegment implements [allocator].
func (m *Master) newSegment(mode AllocMode) *Segment {
	if mode == AllocPool {
		if m.segPool == nil {
			return nil
		}
		return m.segPool.Get()
	}
	return &Segment{}
}

// freeSegment implements [allocator]. Heap segments are left to the
// garbage collector.
func (m *Master) freeSegment(s *Segment, mode AllocMode) {
	if mode == AllocPool {
		m.segPool.Put(s)
	}
}

// free implements [allocator]: release the segment chain, then the
// transaction, each through the allocator that produced it.
func (m *Master) free(t *Transaction) {
	if t == nil {
		return
	}
	mode := t.mode
	for s := t.root; s != nil; {
		next := s.Next()
		m.freeSegment(s, mode)
		s = next
	}
	if mode == AllocPool {
		m.txPool.Put(t)
	}
}

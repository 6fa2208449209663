package bus

import (
	"sync"

	"github.com/ardnew/softi2c/pkg"
)

// TransactionPool is a fixed-capacity free list of pre-allocated
// transactions. Get and Put are safe from interrupt context: the critical
// section is bounded to the pointer swap of a free-list entry, and neither
// operation touches the general heap.
type TransactionPool struct {
	mu   sync.Mutex
	free []*Transaction
	size int
}

// NewTransactionPool creates a pool of n transactions.
func NewTransactionPool(n int) *TransactionPool {
	p := &TransactionPool{
		free: make([]*Transaction, n),
		size: n,
	}
	for i := range p.free {
		p.free[i] = &Transaction{}
	}
	return p
}

// Get pops a zeroed transaction, or nil when the pool is exhausted.
func (p *TransactionPool) Get() *Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) == 0 {
		return nil
	}
	t := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return t
}

// Put returns a transaction to the pool.
func (p *TransactionPool) Put(t *Transaction) {
	if t == nil {
		return
	}
	t.reset()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) >= p.size {
		pkg.LogWarn(pkg.ComponentPool, "transaction pool overfilled")
		return
	}
	p.free = append(p.free, t)
}

// Cap returns the pool capacity.
func (p *TransactionPool) Cap() int { return p.size }

// Free returns the number of available entries.
func (p *TransactionPool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// SegmentPool is a fixed-capacity free list of pre-allocated segments,
// with the same interrupt-context guarantees as [TransactionPool].
type SegmentPool struct {
	mu   sync.Mutex
	free []*Segment
	size int
}

// NewSegmentPool creates a pool of n segments.
func NewSegmentPool(n int) *SegmentPool {
	p := &SegmentPool{
		free: make([]*Segment, n),
		size: n,
	}
	for i := range p.free {
		p.free[i] = &Segment{}
	}
	return p
}

// Get pops a zeroed segment, or nil when the pool is exhausted.
func (p *SegmentPool) Get() *Segment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) == 0 {
		return nil
	}
	s := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return s
}

// Put returns a segment to the pool.
func (p *SegmentPool) Put(s *Segment) {
	if s == nil {
		return
	}
	s.reset()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) >= p.size {
		pkg.LogWarn(pkg.ComponentPool, "segment pool overfilled")
		return
	}
	p.free = append(p.free, s)
}

// Cap returns the pool capacity.
func (p *SegmentPool) Cap() int { return p.size }

// Free returns the number of available entries.
func (p *SegmentPool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

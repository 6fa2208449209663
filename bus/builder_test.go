package bus

import (
	"errors"
	"testing"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// fakeResource is a Resource that accepts everything (or fails with a
// configured error) and records the transactions it receives.
type fakeResource struct {
	postErr error
	posted  []*Transaction
}

func (r *fakeResource) Init(sda, scl hal.Pin) error { return nil }
func (r *fakeResource) Close()                      {}

func (r *fakeResource) Post(t *Transaction) error {
	if r.postErr != nil {
		return r.postErr
	}
	t.posted = true
	r.posted = append(r.posted, t)
	return nil
}

func newTestMaster(t *testing.T, opts ...Option) (*Master, *fakeResource) {
	t.Helper()
	r := &fakeResource{}
	m, err := New(r, 4, 5, opts...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return m, r
}

func TestBuilderChain(t *testing.T) {
	m, r := newTestMaster(t)

	err := m.Transfer(0x50).
		Tx([]byte{0x00, 0x10}).
		RxLen(4).
		On(pkg.EventAll, func(*Transaction, pkg.Event) {}).
		Apply()
	if err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if len(r.posted) != 1 {
		t.Fatalf("posted = %d, want 1", len(r.posted))
	}

	xact := r.posted[0]
	if xact.Addr() != 0x50 {
		t.Errorf("addr = %#x, want 0x50", xact.Addr())
	}
	s1 := xact.Root()
	if s1 == nil || s1.Dir() != Transmit || s1.Len() != 2 {
		t.Fatal("first segment should be a 2-byte transmit")
	}
	s2 := s1.Next()
	if s2 == nil || s2.Dir() != Receive || s2.Len() != 4 {
		t.Fatal("second segment should be a 4-byte receive")
	}
	if s2.Next() != nil {
		t.Error("chain should end after two segments")
	}
}

func TestBuilderDefaultClock(t *testing.T) {
	m, r := newTestMaster(t, WithClock(400000))

	if err := m.Transfer(0x50).Apply(); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if got := r.posted[0].Clock(); got != 400000 {
		t.Errorf("clock = %d, want master default 400000", got)
	}
}

func TestBuilderClockOverride(t *testing.T) {
	m, r := newTestMaster(t)

	if err := m.Transfer(0x50).Clock(1000000).Apply(); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if got := r.posted[0].Clock(); got != 1000000 {
		t.Errorf("clock = %d, want override 1000000", got)
	}
}

func TestBuilderRepeatedStart(t *testing.T) {
	m, r := newTestMaster(t)

	if err := m.Transfer(0x50).Tx([]byte{0x00}).RepeatedStart().Apply(); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if !r.posted[0].Repeated() {
		t.Error("RepeatedStart should mark the transaction")
	}
}

func TestBuilderApplyIdempotent(t *testing.T) {
	m, r := newTestMaster(t)

	b := m.Transfer(0x50).Tx([]byte{0x01})
	if err := b.Apply(); err != nil {
		t.Fatalf("Apply() = %v", err)
	}
	if err := b.Apply(); err != nil {
		t.Errorf("second Apply() = %v, want cached nil", err)
	}
	if len(r.posted) != 1 {
		t.Errorf("posted = %d, want 1 (second Apply must not repost)", len(r.posted))
	}
}

func TestBuilderApplyIdempotentError(t *testing.T) {
	m, r := newTestMaster(t)
	r.postErr = pkg.ErrBusy

	b := m.Transfer(0x50)
	if err := b.Apply(); !errors.Is(err, pkg.ErrBusy) {
		t.Fatalf("Apply() = %v, want ErrBusy", err)
	}
	if err := b.Apply(); !errors.Is(err, pkg.ErrBusy) {
		t.Errorf("second Apply() = %v, want cached ErrBusy", err)
	}
}

func TestBuilderHandlerOverflow(t *testing.T) {
	m, r := newTestMaster(t)

	b := m.Transfer(0x50)
	for i := 0; i <= MaxEventHandlers; i++ {
		b.On(pkg.EventAll, func(*Transaction, pkg.Event) {})
	}
	if err := b.Apply(); !errors.Is(err, pkg.ErrHandlersFull) {
		t.Errorf("Apply() = %v, want ErrHandlersFull", err)
	}
	if len(r.posted) != 0 {
		t.Error("overflowed builder must not post")
	}
}

func TestBuilderOnIRQTargetsTail(t *testing.T) {
	m, r := newTestMaster(t)

	cb := func(*Segment, pkg.Event) {}
	err := m.Transfer(0x50).
		Tx([]byte{0x00}).
		RxLen(2).
		OnIRQ(cb).
		Apply()
	if err != nil {
		t.Fatalf("Apply() = %v", err)
	}

	xact := r.posted[0]
	if xact.Root().irqCB != nil {
		t.Error("first segment should carry no interrupt callback")
	}
	if xact.Root().Next().irqCB == nil {
		t.Error("OnIRQ should bind to the most recently appended segment")
	}
}

func TestBuilderOnIRQPreservesInlineCopyBack(t *testing.T) {
	m, r := newTestMaster(t)

	p := make([]byte, 2)
	userCalls := 0
	err := m.Transfer(0x50).
		Rx(p).
		OnIRQ(func(*Segment, pkg.Event) { userCalls++ }).
		Apply()
	if err != nil {
		t.Fatalf("Apply() = %v", err)
	}

	// Simulate the hardware filling the inline storage and completing.
	seg := r.posted[0].Root()
	if !seg.IsInline() {
		t.Fatal("2-byte receive should use inline storage")
	}
	copy(seg.Bytes(), []byte{0xBE, 0xEF})
	seg.CallIRQCallback(pkg.EventTransferComplete)

	if p[0] != 0xBE || p[1] != 0xEF {
		t.Errorf("p = % x, want be ef (copy-back must survive OnIRQ)", p)
	}
	if userCalls != 1 {
		t.Errorf("user callback fired %d times, want 1", userCalls)
	}
}

func TestBuilderIRQSafeWithoutPools(t *testing.T) {
	m, r := newTestMaster(t)

	if err := m.TransferIRQSafe(0x50).Apply(); !errors.Is(err, pkg.ErrAllocation) {
		t.Errorf("Apply() = %v, want ErrAllocation without pools", err)
	}
	if len(r.posted) != 0 {
		t.Error("unallocatable builder must not post")
	}
}

func TestBuilderIRQSafePoolExhaustion(t *testing.T) {
	m, _ := newTestMaster(t,
		WithTransactionPool(NewTransactionPool(1)),
		WithSegmentPool(NewSegmentPool(1)))

	// Hold the only pool entry so the second builder starves.
	b1 := m.TransferIRQSafe(0x50).Tx([]byte{0x01})
	if err := m.TransferIRQSafe(0x51).Apply(); !errors.Is(err, pkg.ErrAllocation) {
		t.Errorf("Apply() = %v, want ErrAllocation on exhaustion", err)
	}
	if err := b1.Apply(); err != nil {
		t.Errorf("first builder Apply() = %v", err)
	}
}

func TestBuilderSegmentPoolExhaustion(t *testing.T) {
	m, _ := newTestMaster(t,
		WithTransactionPool(NewTransactionPool(2)),
		WithSegmentPool(NewSegmentPool(1)))

	err := m.TransferIRQSafe(0x50).
		Tx([]byte{0x01}).
		RxLen(2). // Second segment starves the pool.
		Apply()
	if !errors.Is(err, pkg.ErrAllocation) {
		t.Fatalf("Apply() = %v, want ErrAllocation", err)
	}
}

func TestBuilderFailedApplyReleasesPoolEntries(t *testing.T) {
	txp := NewTransactionPool(1)
	sgp := NewSegmentPool(1)
	m, r := newTestMaster(t,
		WithTransactionPool(txp), WithSegmentPool(sgp))
	r.postErr = pkg.ErrInvalidAddress

	err := m.TransferIRQSafe(0x50).Tx([]byte{0x01}).Apply()
	if !errors.Is(err, pkg.ErrInvalidAddress) {
		t.Fatalf("Apply() = %v, want ErrInvalidAddress", err)
	}
	if txp.Free() != 1 || sgp.Free() != 1 {
		t.Errorf("pool free = (%d, %d), want (1, 1) after failed apply",
			txp.Free(), sgp.Free())
	}
}

func TestMasterNewNilResource(t *testing.T) {
	if _, err := New(nil, 4, 5); !errors.Is(err, pkg.ErrInvalidMaster) {
		t.Errorf("New(nil) = %v, want ErrInvalidMaster", err)
	}
}

func TestMasterSetClock(t *testing.T) {
	m, _ := newTestMaster(t)
	if m.Clock() != hal.DefaultClock {
		t.Errorf("Clock() = %d, want default %d", m.Clock(), hal.DefaultClock)
	}
	m.SetClock(400000)
	if m.Clock() != 400000 {
		t.Errorf("Clock() = %d, want 400000", m.Clock())
	}
}

func TestMasterWithTransfer(t *testing.T) {
	m, r := newTestMaster(t)

	err := m.WithTransfer(0x50, func(b *Builder) {
		b.Tx([]byte{0xAB})
	})
	if err != nil {
		t.Fatalf("WithTransfer() = %v", err)
	}
	if len(r.posted) != 1 {
		t.Fatalf("posted = %d, want 1", len(r.posted))
	}
	if r.posted[0].Root().Bytes()[0] != 0xAB {
		t.Error("payload should reach the resource manager")
	}
}

func TestMasterWithTransferIRQSafe(t *testing.T) {
	txp := NewTransactionPool(1)
	sgp := NewSegmentPool(1)
	m, r := newTestMaster(t,
		WithTransactionPool(txp), WithSegmentPool(sgp))

	err := m.WithTransferIRQSafe(0x50, func(b *Builder) {
		b.Tx([]byte{0x7F})
	})
	if err != nil {
		t.Fatalf("WithTransferIRQSafe() = %v", err)
	}
	if len(r.posted) != 1 || r.posted[0].Mode() != AllocPool {
		t.Fatal("transaction should be posted in pool mode")
	}

	// The pool entry is held by the posted transaction, so a second build
	// starves and the failed builder releases nothing it doesn't own.
	err = m.WithTransferIRQSafe(0x51, nil)
	if !errors.Is(err, pkg.ErrAllocation) {
		t.Errorf("exhausted WithTransferIRQSafe() = %v, want ErrAllocation", err)
	}
	if len(r.posted) != 1 {
		t.Error("starved builder must not post")
	}
}

func TestMasterWithTransferNilBuild(t *testing.T) {
	m, r := newTestMaster(t)
	if err := m.WithTransfer(0x08, nil); err != nil {
		t.Fatalf("WithTransfer(nil) = %v", err)
	}
	if len(r.posted) != 1 || r.posted[0].Root() != nil {
		t.Error("nil build should post a zero-segment probe")
	}
}

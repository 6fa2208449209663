package bus

import (
	"errors"
	"testing"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// mockController records every hal.Controller call for assertions.
type mockController struct {
	initErr error
	busy    bool
	pending pkg.Event

	inited    bool
	sda, scl  hal.Pin
	clock     uint32
	irq       func()
	transfers []mockTransfer
}

type mockTransfer struct {
	tx, rx []byte
	addr   uint16
	stop   bool
}

func (c *mockController) Init(sda, scl hal.Pin) error {
	if c.initErr != nil {
		return c.initErr
	}
	c.inited = true
	c.sda, c.scl = sda, scl
	return nil
}

func (c *mockController) IsBusy() bool       { return c.busy }
func (c *mockController) SetClock(hz uint32) { c.clock = hz }
func (c *mockController) BindIRQ(fn func())  { c.irq = fn }
func (c *mockController) TranslateIRQ() pkg.Event {
	ev := c.pending
	c.pending = 0
	return ev
}

func (c *mockController) StartTransfer(tx, rx []byte, addr uint16, stop bool) {
	c.transfers = append(c.transfers, mockTransfer{tx: tx, rx: rx, addr: addr, stop: stop})
}

func newTestHWManager() (*HWManager, *mockController, *recordSched) {
	ctrl := &mockController{}
	s := &recordSched{}
	h := NewHWManager(0, ctrl, s)
	return h, ctrl, s
}

func TestHWManagerBindsIRQ(t *testing.T) {
	_, ctrl, _ := newTestHWManager()
	if ctrl.irq == nil {
		t.Fatal("constructor should bind the interrupt handler")
	}
}

func TestHWManagerInit(t *testing.T) {
	h, ctrl, _ := newTestHWManager()

	if err := h.Init(4, 5); err != nil {
		t.Fatalf("Init() = %v", err)
	}
	if !ctrl.inited || ctrl.sda != 4 || ctrl.scl != 5 {
		t.Errorf("controller bound to (%v, %v), want (P4, P5)", ctrl.sda, ctrl.scl)
	}

	// Same pins: idempotent.
	if err := h.Init(4, 5); err != nil {
		t.Errorf("repeat Init with same pins = %v, want nil", err)
	}

	// Different pins: rejected, bound state unchanged.
	if err := h.Init(6, 7); !errors.Is(err, pkg.ErrPinMismatch) {
		t.Errorf("Init with different pins = %v, want ErrPinMismatch", err)
	}
	if ctrl.sda != 4 || ctrl.scl != 5 {
		t.Error("failed re-init must not change the bound pins")
	}
}

func TestHWManagerInitPropagatesControllerError(t *testing.T) {
	h, ctrl, _ := newTestHWManager()
	ctrl.initErr = pkg.ErrBusy

	if err := h.Init(4, 5); !errors.Is(err, pkg.ErrBusy) {
		t.Fatalf("Init() = %v, want controller error", err)
	}

	// A failed bind leaves the manager unbound for a later retry.
	ctrl.initErr = nil
	if err := h.Init(6, 7); err != nil {
		t.Errorf("retry Init = %v", err)
	}
}

func TestHWManagerStartTransactionBusy(t *testing.T) {
	h, ctrl, _ := newTestHWManager()
	ctrl.busy = true

	xact, _ := newTestTransaction(0x50)
	h.queue = xact
	if err := h.StartTransaction(); !errors.Is(err, pkg.ErrBusy) {
		t.Errorf("StartTransaction() = %v, want ErrBusy", err)
	}
	if len(ctrl.transfers) != 0 {
		t.Error("busy controller must not receive a transfer")
	}
}

func TestHWManagerStartTransactionEmptyQueue(t *testing.T) {
	h, _, _ := newTestHWManager()
	if err := h.StartTransaction(); !errors.Is(err, pkg.ErrNullTransaction) {
		t.Errorf("StartTransaction() = %v, want ErrNullTransaction", err)
	}
}

func TestHWManagerStartTransactionSetsClock(t *testing.T) {
	h, ctrl, _ := newTestHWManager()

	xact, _ := newTestTransaction(0x50)
	xact.clock = 400000
	addSegments(xact, 1)
	h.queue = xact

	if err := h.StartTransaction(); err != nil {
		t.Fatalf("StartTransaction() = %v", err)
	}
	if ctrl.clock != 400000 {
		t.Errorf("clock = %d, want the transaction's 400000", ctrl.clock)
	}
}

func TestHWManagerStartTransactionProbe(t *testing.T) {
	h, ctrl, _ := newTestHWManager()

	xact, _ := newTestTransaction(0x29)
	h.queue = xact

	if err := h.StartTransaction(); err != nil {
		t.Fatalf("StartTransaction() = %v", err)
	}
	if len(ctrl.transfers) != 1 {
		t.Fatalf("transfers = %d, want 1", len(ctrl.transfers))
	}
	tr := ctrl.transfers[0]
	if tr.tx != nil || tr.rx != nil {
		t.Error("zero-segment probe should carry no payload")
	}
	if tr.addr != 0x29 || !tr.stop {
		t.Errorf("probe = addr %#x stop %v, want addr 0x29 stop true", tr.addr, tr.stop)
	}
}

func TestHWManagerStopCondition(t *testing.T) {
	for _, tt := range []struct {
		name     string
		segments int
		repeated bool
		// Expected stop flag per issued segment transfer.
		stops []bool
	}{
		{"single segment", 1, false, []bool{true}},
		{"single segment repeated", 1, true, []bool{false}},
		{"two segments", 2, false, []bool{false, true}},
		{"two segments repeated", 2, true, []bool{false, false}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			h, ctrl, _ := newTestHWManager()

			xact, _ := newTestTransaction(0x50)
			xact.repeated = tt.repeated
			addSegments(xact, tt.segments)
			h.queue = xact

			if err := h.StartTransaction(); err != nil {
				t.Fatalf("StartTransaction() = %v", err)
			}
			for xact.AdvanceSegment() {
				if err := h.StartSegment(); err != nil {
					t.Fatalf("StartSegment() = %v", err)
				}
			}

			if len(ctrl.transfers) != len(tt.stops) {
				t.Fatalf("transfers = %d, want %d", len(ctrl.transfers), len(tt.stops))
			}
			for i, want := range tt.stops {
				if ctrl.transfers[i].stop != want {
					t.Errorf("transfer %d stop = %v, want %v", i, ctrl.transfers[i].stop, want)
				}
			}
		})
	}
}

func TestHWManagerSegmentDirection(t *testing.T) {
	h, ctrl, _ := newTestHWManager()

	xact, _ := newTestTransaction(0x50)
	tx := xact.NewSegment()
	tx.Set([]byte{0x01, 0x02})
	tx.SetDir(Transmit)
	rx := xact.NewSegment()
	rx.SetLength(4)
	rx.SetDir(Receive)
	h.queue = xact

	if err := h.StartTransaction(); err != nil {
		t.Fatalf("StartTransaction() = %v", err)
	}
	xact.AdvanceSegment()
	if err := h.StartSegment(); err != nil {
		t.Fatalf("StartSegment() = %v", err)
	}

	if len(ctrl.transfers) != 2 {
		t.Fatalf("transfers = %d, want 2", len(ctrl.transfers))
	}
	if ctrl.transfers[0].tx == nil || ctrl.transfers[0].rx != nil {
		t.Error("transmit segment should populate the tx buffer only")
	}
	if ctrl.transfers[1].tx != nil || ctrl.transfers[1].rx == nil {
		t.Error("receive segment should populate the rx buffer only")
	}
	if len(ctrl.transfers[1].rx) != 4 {
		t.Errorf("rx length = %d, want 4", len(ctrl.transfers[1].rx))
	}
}

func TestHWManagerValidateTransaction(t *testing.T) {
	h, _, _ := newTestHWManager()

	for _, tt := range []struct {
		name  string
		addr  uint16
		clock uint32
		want  error
	}{
		{"valid 7-bit", 0x50, 100000, nil},
		{"valid 10-bit", 0x3FF, 100000, nil},
		{"address out of range", 0x400, 100000, pkg.ErrInvalidAddress},
		{"zero clock", 0x50, 0, pkg.ErrInvalidClock},
	} {
		t.Run(tt.name, func(t *testing.T) {
			xact, _ := newTestTransaction(tt.addr)
			xact.clock = tt.clock
			if err := h.ValidateTransaction(xact); !errors.Is(err, tt.want) {
				t.Errorf("ValidateTransaction() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHWManagerIRQDrivesStateMachine(t *testing.T) {
	h, ctrl, s := newTestHWManager()

	xact, iss := newTestTransaction(0x50)
	addSegments(xact, 1)
	fired := 0
	xact.On(pkg.EventTransferComplete, func(*Transaction, pkg.Event) { fired++ })

	if err := h.Post(xact); err != nil {
		t.Fatalf("Post() = %v", err)
	}
	if len(ctrl.transfers) != 1 {
		t.Fatalf("transfers = %d after post, want 1", len(ctrl.transfers))
	}

	// Simulate the controller raising its completion interrupt.
	ctrl.pending = pkg.EventTransferComplete
	ctrl.irq()
	s.runAll()

	if fired != 1 {
		t.Errorf("terminal handler fired %d times, want 1", fired)
	}
	if len(iss.freed) != 1 {
		t.Error("transaction should be released")
	}
	if h.head() != nil {
		t.Error("queue should be empty after the terminal event")
	}
}

func TestHWManagerIndex(t *testing.T) {
	ctrl := &mockController{}
	h := NewHWManager(2, ctrl, &recordSched{})
	if h.Index() != 2 {
		t.Errorf("Index() = %d, want 2", h.Index())
	}
}

package bus

import (
	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// MaxAddress is the highest valid target address (10-bit addressing).
const MaxAddress = 0x3FF

// HWManager binds the generic [Manager] state machine to one physical
// on-chip controller instance and its interrupt vector. Create one per
// controller index.
type HWManager struct {
	Manager

	ctrl  hal.Controller
	index int

	sda, scl hal.Pin
	inited   bool
}

// NewHWManager creates a resource manager for the controller at the given
// index and binds its interrupt vector. Deferred terminal events are
// posted to s.
func NewHWManager(index int, ctrl hal.Controller, s Scheduler) *HWManager {
	h := &HWManager{
		ctrl:  ctrl,
		index: index,
		sda:   hal.NoPin,
		scl:   hal.NoPin,
	}
	h.attach(h, s)
	ctrl.BindIRQ(h.irqHandler)
	return h
}

// irqHandler is the bound interrupt entry: translate the raw hardware
// signal into an event code and feed the shared state machine.
func (h *HWManager) irqHandler() {
	h.ProcessEvent(h.ctrl.TranslateIRQ())
}

// Init implements [Backend]. The first call permanently binds the
// controller to the pin pair; repeat calls succeed idempotently with the
// same pins and fail with pkg.ErrPinMismatch otherwise, leaving the bound
// state unchanged.
func (h *HWManager) Init(sda, scl hal.Pin) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.inited {
		if err := h.ctrl.Init(sda, scl); err != nil {
			return err
		}
		h.sda = sda
		h.scl = scl
		h.inited = true
		pkg.LogInfo(pkg.ComponentManager, "controller bound",
			"index", h.index, "sda", sda.String(), "scl", scl.String())
		return nil
	}
	if h.sda != sda || h.scl != scl {
		return pkg.ErrPinMismatch
	}
	return nil
}

// StartTransaction implements [Backend]. Requires the critical section
// held. A busy controller fails fast with pkg.ErrBusy instead of queuing
// a second concurrent start.
func (h *HWManager) StartTransaction() error {
	if h.ctrl.IsBusy() {
		return pkg.ErrBusy
	}
	t := h.head()
	if t == nil {
		return pkg.ErrNullTransaction
	}
	h.ctrl.SetClock(t.Clock())
	t.ResetCurrent()
	if t.Current() == nil {
		// Zero-segment transaction: address-presence probe, no data
		// phase. The completion event retires it like any other.
		h.ctrl.StartTransfer(nil, nil, t.Addr(), !t.Repeated())
		return nil
	}
	return h.StartSegment()
}

// StartSegment implements [Backend]. Requires the critical section held.
// A stop condition is generated iff this is the last segment and the
// transaction does not request a repeated start.
func (h *HWManager) StartSegment() error {
	t := h.head()
	if t == nil {
		return pkg.ErrNullTransaction
	}
	s := t.Current()
	if s == nil {
		return pkg.ErrNullSegment
	}
	stop := s.Next() == nil && !t.Repeated()
	if s.Dir() == Transmit {
		h.ctrl.StartTransfer(s.Bytes(), nil, t.Addr(), stop)
	} else {
		h.ctrl.StartTransfer(nil, s.Bytes(), t.Addr(), stop)
	}
	return nil
}

// ValidateTransaction implements [Backend].
func (h *HWManager) ValidateTransaction(t *Transaction) error {
	if t.Addr() > MaxAddress {
		return pkg.ErrInvalidAddress
	}
	if t.Clock() == 0 {
		return pkg.ErrInvalidClock
	}
	return nil
}

// PowerUp implements [Backend]. Requires the critical section held.
func (h *HWManager) PowerUp() error {
	pkg.LogDebug(pkg.ComponentManager, "controller powered up",
		"index", h.index)
	return nil
}

// PowerDown implements [Backend]. Requires the critical section held.
func (h *HWManager) PowerDown() error {
	pkg.LogDebug(pkg.ComponentManager, "controller powered down",
		"index", h.index)
	return nil
}

// Index returns the controller index.
func (h *HWManager) Index() int {
	return h.index
}

package hal

import (
	"strconv"

	"github.com/ardnew/softi2c/pkg"
)

// Pin identifies a physical controller pin.
type Pin int

// NoPin indicates an unbound pin.
const NoPin Pin = -1

// String returns a human-readable pin name.
func (p Pin) String() string {
	if p == NoPin {
		return "none"
	}
	return "P" + strconv.Itoa(int(p))
}

// DefaultClock is the bus clock rate controllers configure at Init time.
const DefaultClock uint32 = 100000

// Controller is the capability interface of one physical I2C master
// controller.
//
// StartTransfer is the single asynchronous transfer primitive: it issues the
// address phase followed by the transmit bytes (tx non-empty) or the receive
// bytes (rx non-empty), optionally generating a stop condition, and returns
// without waiting. Completion is signaled by raising the interrupt bound
// with BindIRQ. A call with both tx and rx empty is an address-presence
// probe: address phase plus stop, no data.
//
// All methods except TranslateIRQ are called from task context with the
// resource manager's critical section held; they must not block.
type Controller interface {
	// Init binds the controller to a pin pair and prepares the hardware.
	// Also configures the bus clock to DefaultClock.
	Init(sda, scl Pin) error

	// IsBusy reports whether a physical transfer is in flight.
	IsBusy() bool

	// SetClock configures the bus clock rate in hertz.
	SetClock(hz uint32)

	// StartTransfer issues one asynchronous transfer leg.
	// Exactly one of tx, rx is non-empty, or both are empty for a probe.
	StartTransfer(tx, rx []byte, addr uint16, stop bool)

	// BindIRQ installs the interrupt handler invoked on transfer
	// completion. A controller has a single vector; rebinding replaces
	// the handler.
	BindIRQ(fn func())

	// TranslateIRQ reads and clears the hardware event register,
	// returning the event that raised the interrupt. Interrupt context
	// only.
	TranslateIRQ() pkg.Event
}

package pkg

import "errors"

// I2C master errors.
var (
	// ErrInvalidMaster indicates a master handle not bound to a resource manager.
	ErrInvalidMaster = errors.New("master not bound to a resource manager")

	// ErrPinMismatch indicates re-initialization with different pins on an
	// already-bound controller.
	ErrPinMismatch = errors.New("controller bound to different pins")

	// ErrBusy indicates a transfer start was requested while a physical
	// transfer is in flight.
	ErrBusy = errors.New("controller busy")

	// ErrNullTransaction indicates a nil transaction where one is required.
	ErrNullTransaction = errors.New("nil transaction")

	// ErrNullSegment indicates a nil segment where one is required.
	ErrNullSegment = errors.New("nil segment")

	// ErrAllocation indicates pool or heap exhaustion at transaction or
	// segment construction.
	ErrAllocation = errors.New("allocation failed")

	// ErrHandlersFull indicates all event handler slots are taken.
	ErrHandlersFull = errors.New("event handler slots full")

	// ErrInvalidAddress indicates a target address outside the valid range.
	ErrInvalidAddress = errors.New("invalid target address")

	// ErrInvalidClock indicates a zero or unsupported bus clock rate.
	ErrInvalidClock = errors.New("invalid bus clock")

	// ErrStopped indicates the component has been stopped or closed.
	ErrStopped = errors.New("stopped")

	// ErrAlreadyRunning indicates the component is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrNoSlave indicates no device acknowledged the target address.
	ErrNoSlave = errors.New("no slave at address")

	// ErrEarlyNACK indicates the slave NACKed before the transfer finished.
	ErrEarlyNACK = errors.New("early NACK from slave")

	// ErrTransfer indicates a generic physical transfer error.
	ErrTransfer = errors.New("transfer error")
)

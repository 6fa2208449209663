package pkg

import "strings"

// Event is a bitmask of I2C transfer completion conditions reported by the
// hardware controller. An interrupt is translated into exactly one Event
// value, which may carry more than one bit set.
type Event uint32

// Transfer event bits. The bit positions follow the hardware event register
// layout and must not be reordered.
const (
	// EventError indicates a generic bus error (arbitration loss, bus fault).
	EventError Event = 1 << 1

	// EventErrorNoSlave indicates no device acknowledged the target address.
	EventErrorNoSlave Event = 1 << 2

	// EventTransferComplete indicates the transfer finished successfully.
	EventTransferComplete Event = 1 << 3

	// EventTransferEarlyNACK indicates the slave NACKed mid-transfer.
	EventTransferEarlyNACK Event = 1 << 4

	// EventAll matches every reportable event.
	EventAll = EventError | EventErrorNoSlave | EventTransferComplete | EventTransferEarlyNACK

	// EventNone matches nothing; an Event of this value reports nothing.
	EventNone Event = 0
)

// IsError returns true if the event carries any bit other than a successful
// transfer completion.
func (e Event) IsError() bool {
	return e&EventAll&^EventTransferComplete != 0
}

// IsComplete returns true if the event carries the transfer-complete bit.
func (e Event) IsComplete() bool {
	return e&EventTransferComplete != 0
}

// Matches returns true if the event intersects the given mask.
func (e Event) Matches(mask Event) bool {
	return e&mask != 0
}

// Error returns the sentinel error corresponding to the highest-priority
// error bit in the event, or nil for a successful completion.
func (e Event) Error() error {
	switch {
	case e&EventErrorNoSlave != 0:
		return ErrNoSlave
	case e&EventTransferEarlyNACK != 0:
		return ErrEarlyNACK
	case e&EventError != 0:
		return ErrTransfer
	default:
		return nil
	}
}

// String returns a "|"-joined list of the event bit names.
func (e Event) String() string {
	if e&EventAll == 0 {
		return "none"
	}
	var names []string
	if e&EventTransferComplete != 0 {
		names = append(names, "complete")
	}
	if e&EventError != 0 {
		names = append(names, "error")
	}
	if e&EventErrorNoSlave != 0 {
		names = append(names, "no-slave")
	}
	if e&EventTransferEarlyNACK != 0 {
		names = append(names, "early-nack")
	}
	return strings.Join(names, "|")
}

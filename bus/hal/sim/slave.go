package sim

import "github.com/ardnew/softi2c/pkg"

// Slave models one I2C slave device on the simulated bus. Write receives
// the transmit bytes of one transfer leg; Read fills the receive buffer of
// one leg. Both return the event the controller reports for that leg.
//
// Slave methods are called with the bus lock held; implementations must not
// call back into the Bus.
type Slave interface {
	Write(data []byte) pkg.Event
	Read(buf []byte) pkg.Event
}

// MemSlave models a register-file device: the first written byte selects a
// memory offset, remaining bytes store from there, and reads stream from
// the current offset. This matches the common EEPROM access pattern of a
// pointer write followed by a repeated-start read.
type MemSlave struct {
	mem []byte
	ptr int
}

// NewMemSlave creates a MemSlave with the given memory size.
func NewMemSlave(size int) *MemSlave {
	return &MemSlave{mem: make([]byte, size)}
}

// Write implements [Slave].
func (s *MemSlave) Write(data []byte) pkg.Event {
	if len(data) == 0 {
		return pkg.EventTransferComplete
	}
	s.ptr = int(data[0]) % len(s.mem)
	for _, v := range data[1:] {
		s.mem[s.ptr] = v
		s.ptr = (s.ptr + 1) % len(s.mem)
	}
	return pkg.EventTransferComplete
}

// Read implements [Slave].
func (s *MemSlave) Read(buf []byte) pkg.Event {
	for i := range buf {
		buf[i] = s.mem[s.ptr]
		s.ptr = (s.ptr + 1) % len(s.mem)
	}
	return pkg.EventTransferComplete
}

// Mem exposes the backing memory for test setup and assertions.
func (s *MemSlave) Mem() []byte { return s.mem }

// NackSlave models a device that accepts at most Limit bytes per write
// before NACKing, and never accepts reads. Zero-byte probes are ACKed.
type NackSlave struct {
	Limit int
}

// Write implements [Slave].
func (s *NackSlave) Write(data []byte) pkg.Event {
	if len(data) > s.Limit {
		return pkg.EventTransferEarlyNACK
	}
	return pkg.EventTransferComplete
}

// Read implements [Slave].
func (s *NackSlave) Read(buf []byte) pkg.Event {
	return pkg.EventTransferEarlyNACK
}

// SlaveFunc adapts plain functions to the [Slave] interface. A nil function
// reports a generic bus error for that direction.
type SlaveFunc struct {
	WriteFunc func(data []byte) pkg.Event
	ReadFunc  func(buf []byte) pkg.Event
}

// Write implements [Slave].
func (s SlaveFunc) Write(data []byte) pkg.Event {
	if s.WriteFunc == nil {
		return pkg.EventError
	}
	return s.WriteFunc(data)
}

// Read implements [Slave].
func (s SlaveFunc) Read(buf []byte) pkg.Event {
	if s.ReadFunc == nil {
		return pkg.EventError
	}
	return s.ReadFunc(buf)
}

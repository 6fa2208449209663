package sim

import (
	"sync"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// eventQueueDepth bounds the number of undelivered completion interrupts.
// The resource manager keeps at most one transfer in flight per controller,
// so depth beyond a few entries only matters for misbehaving callers.
const eventQueueDepth = 8

// Bus is a software-simulated I2C master controller implementing
// [hal.Controller].
//
// Completion interrupts are delivered on a dedicated goroutine owned by the
// Bus; the handler bound with BindIRQ runs there, standing in for interrupt
// context. Close stops the goroutine.
type Bus struct {
	mu sync.Mutex

	slaves map[uint16]Slave

	sda, scl hal.Pin
	inited   bool
	clock    uint32
	busy     bool

	irq     func()
	pending pkg.Event

	// Transfer history for test assertions.
	starts int
	stops  []bool
	clocks []uint32

	events chan pkg.Event
	done   chan struct{}
	closed sync.Once
}

// New creates a simulated bus with no slaves attached.
func New() *Bus {
	b := &Bus{
		slaves: make(map[uint16]Slave),
		sda:    hal.NoPin,
		scl:    hal.NoPin,
		events: make(chan pkg.Event, eventQueueDepth),
		done:   make(chan struct{}),
	}
	go b.eventLoop()
	return b
}

// AddSlave attaches a slave model at the given address, replacing any
// existing model at that address.
func (b *Bus) AddSlave(addr uint16, s Slave) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.slaves[addr] = s
}

// RemoveSlave detaches the slave model at the given address.
func (b *Bus) RemoveSlave(addr uint16) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.slaves, addr)
}

// Close stops interrupt delivery. Pending completions are dropped.
func (b *Bus) Close() {
	b.closed.Do(func() { close(b.done) })
}

// Init implements [hal.Controller]. The simulated controller accepts any
// pin pair; pin-mismatch policy belongs to the resource manager above it.
func (b *Bus) Init(sda, scl hal.Pin) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sda = sda
	b.scl = scl
	b.inited = true
	b.clock = hal.DefaultClock
	pkg.LogDebug(pkg.ComponentHAL, "sim controller initialized",
		"sda", sda.String(), "scl", scl.String())
	return nil
}

// IsBusy implements [hal.Controller].
func (b *Bus) IsBusy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy
}

// SetClock implements [hal.Controller].
func (b *Bus) SetClock(hz uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clock = hz
	b.clocks = append(b.clocks, hz)
}

// StartTransfer implements [hal.Controller]. The transfer executes against
// the slave model immediately; the completion interrupt is raised
// asynchronously on the event goroutine.
func (b *Bus) StartTransfer(tx, rx []byte, addr uint16, stop bool) {
	b.mu.Lock()
	b.busy = true
	b.starts++
	b.stops = append(b.stops, stop)

	ev := pkg.EventErrorNoSlave
	if s, ok := b.slaves[addr]; ok {
		switch {
		case len(tx) > 0:
			ev = s.Write(tx)
		case len(rx) > 0:
			ev = s.Read(rx)
		default:
			// Address-presence probe: ACK of the address phase only.
			ev = pkg.EventTransferComplete
		}
	}
	b.mu.Unlock()

	select {
	case b.events <- ev:
	case <-b.done:
	}
}

// BindIRQ implements [hal.Controller].
func (b *Bus) BindIRQ(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.irq = fn
}

// TranslateIRQ implements [hal.Controller]. It reads and clears the latched
// event and releases the busy flag, so a handler observing the event may
// immediately start the next transfer.
func (b *Bus) TranslateIRQ() pkg.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	ev := b.pending
	b.pending = pkg.EventNone
	b.busy = false
	return ev
}

// eventLoop delivers completion interrupts in submission order.
func (b *Bus) eventLoop() {
	for {
		select {
		case <-b.done:
			return
		case ev := <-b.events:
			b.mu.Lock()
			b.pending = ev
			fn := b.irq
			b.mu.Unlock()
			if fn == nil {
				pkg.LogWarn(pkg.ComponentHAL, "interrupt with no handler bound",
					"event", ev.String())
				continue
			}
			fn()
		}
	}
}

// Starts returns the number of transfers started so far.
func (b *Bus) Starts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.starts
}

// Stops returns a copy of the stop-condition flags of every transfer
// started so far, in order.
func (b *Bus) Stops() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bool, len(b.stops))
	copy(out, b.stops)
	return out
}

// Clocks returns a copy of the clock rates configured so far, in order.
func (b *Bus) Clocks() []uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]uint32, len(b.clocks))
	copy(out, b.clocks)
	return out
}

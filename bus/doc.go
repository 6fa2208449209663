// Package bus implements an asynchronous, multi-client I2C master core.
//
// It is platform-agnostic and interacts with hardware via the
// [hal.Controller] interface defined in the [github.com/ardnew/softi2c/bus/hal]
// package. The HAL exposes the minimal capability set for asynchronous I2C
// transfers, allowing platform vendors to provide concrete implementations
// without changing the core.
//
// # Architecture
//
// The core is organized into several layers:
//
//   - [Master] is the client-facing handle, bound to one controller and pin pair
//   - [Builder] constructs multi-segment transactions fluently
//   - [Transaction] is an addressed, ordered chain of [Segment] legs
//   - [Manager] owns the transaction queue and the event state machine
//   - [HWManager] binds the manager to one physical controller and interrupt
//
// # Execution domains
//
// There are exactly two execution domains. Task context posts transactions
// and runs completion handlers; interrupt context advances the queue. The
// two meet only at the queue head, guarded by the manager's critical
// section. User completion handlers never run in interrupt context: terminal
// events are deferred through a [Scheduler] (see
// [github.com/ardnew/softi2c/sched]), so handlers may allocate, block, or
// post new transactions freely.
//
// Per-segment interrupt callbacks are the exception: they run in interrupt
// context, must not block, and exist for protocols that adjust a transfer
// on the fly (e.g. read a length byte, then size the next segment).
//
// # Allocation modes
//
// Transactions built with [Master.Transfer] use ordinary heap allocation
// and may only be constructed in task context. [Master.TransferIRQSafe]
// draws transactions and segments from fixed-capacity pools supplied at
// Master construction, making construction safe from interrupt context.
// The chosen mode travels with the transaction so that release is always
// symmetric with allocation.
//
// # Example
//
//	loop := sched.New(0)
//	loop.Start(ctx)
//	rm := bus.NewHWManager(0, controller, loop)
//	m, err := bus.New(rm, sda, scl)
//	if err != nil {
//	    return err
//	}
//	err = m.WithTransfer(0x50, func(b *bus.Builder) {
//	    b.Tx([]byte{0x00}).RxLen(4).On(pkg.EventAll, done)
//	})
//
// A software-simulated controller for testing is available in
// [github.com/ardnew/softi2c/bus/hal/sim].
package bus

// Package hal defines the Hardware Abstraction Layer interface for I2C
// master controllers.
//
// The bus core never touches controller registers directly. It consumes the
// [Controller] interface, which exposes the small capability set required to
// drive asynchronous transfers: pin binding, busy polling, clock
// configuration, one asynchronous transfer primitive, and the translation of
// a raw interrupt into a [pkg.Event] code.
//
// Platform vendors implement [Controller] for on-chip I2C peripherals.
// Alternative backends (bit-banged I2C, SPI-to-I2C bridges) implement the
// same interface; a software-simulated controller for testing is available
// in [github.com/ardnew/softi2c/bus/hal/sim].
//
// # Interrupt discipline
//
// A controller owns exactly one interrupt vector, bound once with
// [Controller.BindIRQ]. The bound function runs in interrupt context: it
// must not block, allocate from the general heap, or perform unbounded
// work. Everything reachable from it is subject to the same constraint.
package hal

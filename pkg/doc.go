// Package pkg provides shared utilities for the softi2c master stack.
//
// This package contains common functionality used across the bus core and
// its hardware abstraction layers, including:
//
//   - Structured logging via Go's standard [log/slog] package
//   - Sentinel error types for I2C master errors
//   - The [Event] bitmask carried from interrupt context to event handlers
//   - Component identifiers for log filtering
//
// The package is designed to have zero external dependencies, relying
// only on the Go standard library.
//
// # Logging
//
// The logging subsystem wraps [log/slog] with I2C-specific context:
//
//	pkg.SetLogLevel(slog.LevelDebug)
//	pkg.LogInfo(pkg.ComponentManager, "transaction queued", "addr", 0x50)
//
// # Errors
//
// Common I2C master errors are defined as sentinel values:
//
//	if errors.Is(err, pkg.ErrPinMismatch) {
//	    // Controller already bound to a different pin pair
//	}
package pkg

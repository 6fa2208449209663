// Package prof provides on-demand profiling for the softi2c stack.
//
// The package wraps [runtime/pprof] with a small API suited to profiling
// the interrupt-to-task handoff: CPU samples across a batch of transfers,
// and point-in-time snapshots of heap, goroutine, block, and mutex state.
// It is conditionally compiled using the "profile" build tag:
//
//	go build -tags profile
//	go test -tags profile
//
// When built without the "profile" tag, all exported functions become
// no-ops, so instrumented call sites cost nothing in production.
//
// CPU profiling streams samples and requires explicit start/stop:
//
//	prof.StartCPU("cpu.prof")
//	defer prof.StopCPU()
//
// Other profiles capture a snapshot:
//
//	prof.Write(prof.ProfileHeap, "heap.prof")
//
// Contention profiles must be enabled before they record anything; rates
// follow [runtime.SetBlockProfileRate] and [runtime.SetMutexProfileFraction]:
//
//	prof.SetBlockProfileRate(1)
//	prof.SetMutexProfileFraction(1)
//
// The mutex profile is the most useful one here: the resource manager's
// critical section is shared between the posting task and the interrupt
// handler, and contention on it shows up directly.
package prof

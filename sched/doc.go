// Package sched provides the task-context callback sink consumed by the
// bus core.
//
// The I2C resource manager never runs user completion handlers in interrupt
// context; it posts them to a deferral sink and returns. [Loop] is that
// sink: a single goroutine executing posted callbacks one at a time, in
// submission order, to completion. This models a cooperative single-threaded
// scheduler — callbacks may allocate, post new transactions, or block, and
// none of that ever happens on the interrupt path.
//
//	loop := sched.New(0)
//	loop.Start(ctx)
//	defer loop.Stop()
package sched

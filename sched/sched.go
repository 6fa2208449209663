package sched

import (
	"context"
	"sync"

	"github.com/ardnew/softi2c/pkg"
)

// DefaultDepth is the default callback queue depth.
const DefaultDepth = 32

// Loop executes posted callbacks on a single goroutine in FIFO order.
type Loop struct {
	tasks chan func()

	// State
	running bool
	mutex   sync.Mutex

	// Context for cancellation
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a loop with the given queue depth. A depth of zero or less
// selects DefaultDepth.
func New(depth int) *Loop {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Loop{
		tasks: make(chan func(), depth),
	}
}

// Start starts the loop goroutine.
func (l *Loop) Start(ctx context.Context) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.running {
		return pkg.ErrAlreadyRunning
	}

	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	l.running = true

	go l.run(ctx)

	pkg.LogDebug(pkg.ComponentSched, "loop started")
	return nil
}

// Stop stops the loop, running any callbacks still queued before returning.
func (l *Loop) Stop() {
	l.mutex.Lock()
	if !l.running {
		l.mutex.Unlock()
		return
	}
	l.running = false
	cancel := l.cancel
	done := l.done
	l.mutex.Unlock()

	cancel()
	<-done

	pkg.LogDebug(pkg.ComponentSched, "loop stopped")
}

// IsRunning returns true if the loop is running.
func (l *Loop) IsRunning() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.running
}

// Post queues fn to run on the loop goroutine. It never blocks the caller:
// if the loop is stopped or the queue is full, fn is dropped and Post
// returns false. Callbacks run in submission order.
func (l *Loop) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	l.mutex.Lock()
	running := l.running
	l.mutex.Unlock()
	if !running {
		return false
	}

	select {
	case l.tasks <- fn:
		return true
	default:
		pkg.LogWarn(pkg.ComponentSched, "callback queue full, dropping")
		return false
	}
}

// run is the loop body. On cancellation it drains the queue so callbacks
// posted before Stop still run.
func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-ctx.Done():
			for {
				select {
				case fn := <-l.tasks:
					fn()
				default:
					return
				}
			}
		}
	}
}

package hive

import "sync/atomic"

// State is one of the hive's four lifecycle states.
type State int32

const (
	// StateNew is the state of a hive that has not yet had Run called.
	StateNew State = iota

	// StateRunning is the state while the dispatch loop is popping and
	// delivering envelopes.
	StateRunning

	// StateStopping is entered once SendShutdown is called or a signal
	// arrives; the loop finishes the envelope it has in hand and exits
	// without draining the rest of the queue.
	StateStopping

	// StateStopped is the terminal state, entered when Run returns.
	StateStopped
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// stateBox wraps an atomically-accessed State, since SendShutdown and
// signal delivery happen on a different goroutine than Run's loop.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) get() State {
	return State(b.v.Load())
}

func (b *stateBox) set(s State) {
	b.v.Store(int32(s))
}

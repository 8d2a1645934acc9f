package hive

import (
	"sync"

	"github.com/xudd/xudd/envelope"
)

// queue is the hive's FIFO pending-message queue. It is safe for
// concurrent enqueue from any goroutine (a handler running on the dispatch
// loop, or an external caller such as a transport's receive goroutine or
// the CLI). A single mutex-guarded slice backs both push and pop, so
// ordering is exact: pop always returns the envelope that has been
// sitting in the queue the longest, regardless of how bursty enqueues are.
type queue struct {
	mu      sync.Mutex
	pending []*envelope.Message

	wake chan struct{}
}

func newQueue(capacityHint int) *queue {
	return &queue{
		pending: make([]*envelope.Message, 0, capacityHint),
		wake:    make(chan struct{}, 1),
	}
}

// push enqueues m and nudges the dispatch loop if it's parked waiting for
// work.
func (q *queue) push(m *envelope.Message) {
	q.mu.Lock()
	q.pending = append(q.pending, m)
	q.mu.Unlock()

	q.signal()
}

// pop removes and returns the oldest pending envelope, if any.
func (q *queue) pop() (*envelope.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil, false
	}

	m := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]

	return m, true
}

func (q *queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

package hive

import "sync/atomic"

// counterBox is the monotonically increasing message-ID counter. It starts
// at 0 and is advanced with sync/atomic so that SendMessage can be called
// safely both from the dispatch goroutine and from an external caller (the
// CLI bootstrapping a hive, or a transport's receive goroutine) before or
// after Run starts.
type counterBox struct {
	v atomic.Uint64
}

// next returns the next counter value and advances it.
func (c *counterBox) next() uint64 {
	return c.v.Add(1) - 1
}

package runtime

import (
	"sync/atomic"
	"time"
)

// Clock stamps messages with a strictly increasing wall-clock time.
// Two messages stamped in the same nanosecond get distinct, ordered stamps,
// which keeps storage keys and broadcast order aligned.
type Clock struct {
	lastNano atomic.Int64
}

func (c *Clock) Now() time.Time {
	for {
		now := time.Now().UTC().UnixNano()
		last := c.lastNano.Load()
		if now <= last {
			now = last + 1
		}
		if c.lastNano.CompareAndSwap(last, now) {
			return time.Unix(0, now).UTC()
		}
	}
}

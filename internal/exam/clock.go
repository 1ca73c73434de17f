package exam

import "time"

// Clock converts an attempt's absolute deadline into a monotonically
// decreasing seconds-remaining value and latches a single expiry event.
//
// Remaining time is always recomputed from the deadline, never decremented by
// fixed steps: interval callbacks are not guaranteed to fire while the client
// is backgrounded or suspended, so recomputation from absolute time is the
// only drift-free approach.
type Clock struct {
	endTime      time.Time
	now          func() time.Time
	remaining    int
	backgrounded bool
	expired      bool
}

func NewClock(endTime time.Time) *Clock {
	clock := &Clock{
		endTime: endTime,
		now:     time.Now,
	}
	clock.remaining = clock.compute()
	return clock
}

// NewClockAt builds a Clock with an injected time source.
func NewClockAt(endTime time.Time, now func() time.Time) *Clock {
	clock := &Clock{
		endTime: endTime,
		now:     now,
	}
	clock.remaining = clock.compute()
	return clock
}

func (c *Clock) compute() int {
	left := c.endTime.Sub(c.now())
	if left <= 0 {
		return 0
	}
	return int(left / time.Second)
}

// Remaining returns the seconds remaining as of the last recomputation.
func (c *Clock) Remaining() int {
	return c.remaining
}

func (c *Clock) EndTime() time.Time {
	return c.endTime
}

func (c *Clock) Backgrounded() bool {
	return c.backgrounded
}

// Tick recomputes the remaining seconds. The returned expired flag is true
// only the first time the clock reaches zero; repeated ticks at zero report
// expired=false so expiry handling runs at most once.
func (c *Clock) Tick() (remaining int, expired bool) {
	c.remaining = c.compute()
	if c.remaining == 0 && !c.expired {
		c.expired = true
		return 0, true
	}
	return c.remaining, false
}

// Background marks the clock as backgrounded. The deadline keeps running;
// only the periodic recomputation is suspended by the caller.
func (c *Clock) Background() {
	c.backgrounded = true
}

// Foreground clears the backgrounded flag and immediately recomputes the
// remaining time from wall clock, correcting for any scheduler suspension
// while backgrounded. If the deadline has passed, the expiry latch fires here
// rather than waiting for the next tick.
func (c *Clock) Foreground() (remaining int, expired bool) {
	c.backgrounded = false
	return c.Tick()
}

// RearmExpiry allows expiry to fire once more. Used when an automatic
// submission fails after the deadline so the next tick re-triggers it.
func (c *Clock) RearmExpiry() {
	c.expired = false
}

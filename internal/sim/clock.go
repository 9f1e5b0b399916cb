// Package sim provides the simulated market clock. Each driver tick
// advances virtual time by one simulated minute; when the session passes
// the close, the clock jumps to the next morning's open.
package sim

import (
	"sync"
	"time"
)

// Market session bounds, in virtual hours.
const (
	OpenHour  = 9
	CloseHour = 19
)

// Clock supplies timestamps to the engine. Implementations must be safe
// for concurrent use.
type Clock interface {
	Now() time.Time
}

// RealClock is a Clock backed by wall time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// SimClock is a virtual clock advanced explicitly by the tick driver.
// Timestamp ordering across a single tick is not guaranteed by the clock;
// the engine's submission sequence is authoritative for priority.
type SimClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewSimClock creates a SimClock starting at the session open on the
// given date.
func NewSimClock(date time.Time) *SimClock {
	start := time.Date(date.Year(), date.Month(), date.Day(), OpenHour, 0, 0, 0, date.Location())
	return &SimClock{now: start}
}

// Now returns the current virtual time.
func (c *SimClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves virtual time forward by d and returns the new time.
// Crossing the session close jumps to the next day's open.
func (c *SimClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	if c.now.Hour() >= CloseHour {
		next := c.now.AddDate(0, 0, 1)
		c.now = time.Date(next.Year(), next.Month(), next.Day(), OpenHour, 0, 0, 0, next.Location())
	}
	return c.now
}

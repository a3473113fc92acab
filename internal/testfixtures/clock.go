package testfixtures

import (
	"sync"
	"time"

	"github.com/example/salon-scheduler/internal/domain"
)

// Clock is a controllable time source shared by stores, token managers and
// receipt renderers under test.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock set to start, or to ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc exposes Now for constructors that take a clock function.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

// Date returns the current day in storage format.
func (c *Clock) Date() string {
	return c.Now().Format(domain.DateFormat)
}

// AddDays returns the storage date days after the current day. Booking tests
// use it to pick a weekday or Saturday relative to the clock.
func (c *Clock) AddDays(days int) string {
	return c.Now().AddDate(0, 0, days).Format(domain.DateFormat)
}

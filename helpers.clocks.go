package main

import (
	"time"
)

var _ TickerClocker = (*Clock)(nil)

// Clocker is an interface for getting current real time.
type Clocker interface {
	Now() time.Time
}

// TickerClocker provides the current time and a ticker. It satisfies
// the zapcore.Clock interface so log timestamps follow the service clock.
type TickerClocker interface {
	Clocker
	NewTicker(time.Duration) *time.Ticker
}

// Clock reads the wall time in a fixed location. It serves the request
// handlers, the log file rotation and the log entries timestamps.
type Clock struct {
	tz *time.Location
}

// NewClock returns a Clock set to UTC in production and Local otherwise.
func NewClock(isProd bool) *Clock {
	if isProd {
		return &Clock{tz: time.UTC}
	}
	return &Clock{tz: time.Local}
}

func (ck *Clock) Now() time.Time {
	return time.Now().In(ck.tz)
}

func (ck *Clock) NewTicker(d time.Duration) *time.Ticker {
	return time.NewTicker(d)
}

// Uptime returns the time elapsed since a start instant, rounded down to
// the second. A start in the future yields zero.
func Uptime(ck Clocker, since time.Time) time.Duration {
	d := ck.Now().Sub(since)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

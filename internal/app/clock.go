package app

import "time"

const (
	// DefaultDurationSeconds is the countdown budget when a quiz does not set one.
	DefaultDurationSeconds = 300
	// WarningThresholdSeconds marks the final stretch shown as a warning.
	WarningThresholdSeconds = 60
)

// Clock is a tickable countdown. It owns no goroutine; the session loop feeds it ticks.
type Clock struct {
	budget    int
	remaining int
	running   bool
	timedOut  bool
}

func NewClock(budgetSeconds int) *Clock {
	if budgetSeconds <= 0 {
		budgetSeconds = DefaultDurationSeconds
	}
	return &Clock{budget: budgetSeconds, remaining: budgetSeconds}
}

// Start resets the countdown to the full budget and begins accepting ticks.
func (c *Clock) Start() {
	c.remaining = c.budget
	c.running = true
	c.timedOut = false
}

// Tick removes one second. It returns true exactly once, on the tick that reaches zero.
// A stopped clock ignores ticks.
func (c *Clock) Tick() bool {
	if !c.running {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining > 0 {
		return false
	}
	c.running = false
	if c.timedOut {
		return false
	}
	c.timedOut = true
	return true
}

// Stop is idempotent.
func (c *Clock) Stop() {
	c.running = false
}

// Reset stops the clock and restores the full budget.
func (c *Clock) Reset() {
	c.running = false
	c.timedOut = false
	c.remaining = c.budget
}

func (c *Clock) Remaining() int { return c.remaining }
func (c *Clock) Budget() int    { return c.budget }
func (c *Clock) Running() bool  { return c.running }
func (c *Clock) TimedOut() bool { return c.timedOut }

// Elapsed is the number of seconds consumed from the budget.
func (c *Clock) Elapsed() int { return c.budget - c.remaining }

// Warning reports whether the countdown is in its final minute.
func (c *Clock) Warning() bool {
	return c.remaining <= WarningThresholdSeconds
}

// Ticker is the source of one-second ticks driving a Clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

// NewRealTicker wraps time.Ticker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

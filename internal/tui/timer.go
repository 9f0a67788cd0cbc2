package tui

import "time"

// timerState tracks the countdown state.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// countdown is the focus view's clock, kept apart from display. Time is
// passed in so the phase logic can be driven deterministically.
type countdown struct {
	state    timerState
	total    time.Duration
	started  time.Time
	pausedAt time.Time
	pauseGap time.Duration
}

func (c *countdown) start(total time.Duration, now time.Time) {
	c.state = timerRunning
	c.total = total
	c.started = now
	c.pauseGap = 0
}

// resumeFrom restarts a countdown that began at started, e.g. a session opened
// by another client.
func (c *countdown) resumeFrom(total time.Duration, started time.Time) {
	c.start(total, started)
}

func (c *countdown) stop() {
	c.state = timerStopped
	c.pauseGap = 0
}

func (c *countdown) pause(now time.Time) {
	if c.state != timerRunning {
		return
	}
	c.state = timerPaused
	c.pausedAt = now
}

func (c *countdown) resume(now time.Time) {
	if c.state != timerPaused {
		return
	}
	c.pauseGap += now.Sub(c.pausedAt)
	c.state = timerRunning
}

func (c *countdown) toggle(now time.Time) {
	switch c.state {
	case timerRunning:
		c.pause(now)
	case timerPaused:
		c.resume(now)
	}
}

func (c countdown) running() bool { return c.state != timerStopped }
func (c countdown) paused() bool  { return c.state == timerPaused }

func (c countdown) elapsed(now time.Time) time.Duration {
	switch c.state {
	case timerStopped:
		return 0
	case timerPaused:
		return c.pausedAt.Sub(c.started) - c.pauseGap
	}
	return now.Sub(c.started) - c.pauseGap
}

func (c countdown) remaining(now time.Time) time.Duration {
	if c.state == timerStopped {
		return 0
	}
	left := c.total - c.elapsed(now)
	if left < 0 {
		return 0
	}
	return left
}

// finished reports whether a running countdown has reached zero. A paused
// countdown never finishes.
func (c countdown) finished(now time.Time) bool {
	return c.state == timerRunning && c.elapsed(now) >= c.total
}

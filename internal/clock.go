package internal

import "time"

// Clock lets tests control the timings reported by the walker.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// StepClock advances by a fixed step on every call to Now.
type StepClock struct {
	current time.Time
	step    time.Duration
}

// NewStepClock returns a StepClock starting at start.
func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{current: start, step: step}
}

func (c *StepClock) Now() time.Time {
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

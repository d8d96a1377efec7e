package services

import "time"

// Backoff produces multiplicatively growing waits up to a cap.
// It is not safe for concurrent use; the sync loop owns its instance.
type Backoff struct {
	initial time.Duration
	max     time.Duration
	factor  float64
	current time.Duration
}

// NewBackoff creates a backoff. A factor below 1 is treated as 1.
func NewBackoff(initial, maxWait time.Duration, factor float64) *Backoff {
	if factor < 1 {
		factor = 1
	}
	return &Backoff{
		initial: initial,
		max:     maxWait,
		factor:  factor,
		current: initial,
	}
}

// Next returns the wait for this step and grows the next one.
func (b *Backoff) Next() time.Duration {
	wait := b.current
	if b.max > 0 && wait > b.max {
		wait = b.max
	}
	next := time.Duration(float64(b.current) * b.factor)
	if b.max > 0 && next > b.max {
		next = b.max
	}
	b.current = next
	return wait
}

// Peek returns the wait Next would return without advancing.
func (b *Backoff) Peek() time.Duration {
	if b.max > 0 && b.current > b.max {
		return b.max
	}
	return b.current
}

// Reset returns to the initial wait.
func (b *Backoff) Reset() {
	b.current = b.initial
}

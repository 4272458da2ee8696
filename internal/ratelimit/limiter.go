package ratelimit

import (
	"context"
	"time"
)

// Limiter paces calls to the upstream API with a fixed interval between
// permits. Wait blocks until the next permit or until the context ends, so
// a cancelled import run does not sit in a sleep.
type Limiter struct {
	t *time.Ticker
}

// NewInterval creates a limiter that releases one permit per interval.
func NewInterval(interval time.Duration) *Limiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &Limiter{t: time.NewTicker(interval)}
}

// NewRPS creates a limiter allowing up to rps operations per second.
func NewRPS(rps int) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	return NewInterval(time.Second / time.Duration(rps))
}

func (l *Limiter) Stop() {
	if l != nil && l.t != nil {
		l.t.Stop()
	}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.t == nil {
		return nil
	}
	// A cancelled context wins even when a permit is already pending.
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.t.C:
		return nil
	}
}

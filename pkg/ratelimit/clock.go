// Package ratelimit enforces a minimum wall-clock interval between outbound
// PubChem requests. PubChem asks clients to stay below 5 requests per second;
// exceeding it leads to temporary service blocks (503).
package ratelimit

import (
	"context"
	"time"
)

// Clock abstracts time for the limiter so tests can simulate elapsed time
// without real sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock implements Clock using the system clock.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewRealClock returns a Clock backed by the system clock.
func NewRealClock() Clock {
	return realClock{}
}

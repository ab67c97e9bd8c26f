package repository

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is wrapped by every collection's not-found error.
var ErrNotFound = errors.New("not found")

// Latency is the artificial delay applied per operation kind.
type Latency struct {
	List   time.Duration
	Read   time.Duration
	Create time.Duration
	Update time.Duration
	Delete time.Duration
}

var (
	NoLatency = Latency{}

	ProjectLatency = Latency{
		List:   300 * time.Millisecond,
		Read:   200 * time.Millisecond,
		Create: 400 * time.Millisecond,
		Update: 350 * time.Millisecond,
		Delete: 300 * time.Millisecond,
	}

	UpdateLatency = Latency{
		List:   350 * time.Millisecond,
		Read:   200 * time.Millisecond,
		Create: 500 * time.Millisecond,
		Update: 400 * time.Millisecond,
		Delete: 300 * time.Millisecond,
	}
)

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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

package assign

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned when a newer call with the same key arrived inside
// the window; the caller drops the stale result.
var ErrSuperseded = errors.New("search superseded by a newer call")

// Debouncer coalesces bursts of volunteer-search calls at the UI boundary so
// per-keystroke requests don't storm the store. It is purely local rate
// limiting, not a correctness mechanism; the engine behind it stays stateless.
type Debouncer struct {
	window time.Duration

	mu          sync.Mutex
	generations map[string]uint64
}

func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window:      window,
		generations: make(map[string]uint64),
	}
}

// Do waits out the window and then runs fn, unless a newer Do with the same
// key arrives first or the context is cancelled.
func (d *Debouncer) Do(ctx context.Context, key string, fn func(context.Context) error) error {
	d.mu.Lock()
	d.generations[key]++
	generation := d.generations[key]
	d.mu.Unlock()

	timer := time.NewTimer(d.window)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	d.mu.Lock()
	current := d.generations[key]
	d.mu.Unlock()

	if current != generation {
		return ErrSuperseded
	}

	return fn(ctx)
}

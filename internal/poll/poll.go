// Package poll provides the bounded wait primitive every mechanical
// operation synchronizes on. The hardware never signals completion;
// it can only be asked again.
package poll

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultInterval is the spacing between predicate evaluations.
const DefaultInterval = 100 * time.Millisecond

// Predicate reports whether the awaited condition holds. An error is
// treated as "not yet": transient transport noise must not abort a
// wait.
type Predicate func() (bool, error)

// WaitUntil blocks the caller until pred holds, timeout elapses or ctx
// is cancelled. The predicate runs immediately, then once per
// interval. It returns false only on timeout or cancellation and never
// panics; a cancelled wait must be treated as a failed operation, not
// a cancelled mechanical action.
func WaitUntil(ctx context.Context, log zerolog.Logger, pred Predicate, timeout, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := time.Now().Add(timeout)

	for {
		ok, err := pred()
		if err != nil {
			log.Debug().Err(err).Msg("poll predicate error, treating as not ready")
		} else if ok {
			return true
		}

		if !time.Now().Before(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
}

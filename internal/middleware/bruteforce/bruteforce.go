// Package bruteforce rate-limits repeated attempts against named sensitive
// actions (sign-up, sign-in, password-reset, ...), keyed by client identity.
package bruteforce

import (
	"context"
	"net/http"
	"time"

	"github.com/openaudit/openaudit/internal/config"
	"github.com/openaudit/openaudit/internal/errors"
)

// CounterStore is the shared attempt-counter storage. Increments must be
// atomic under concurrent requests for the same key, and counters must
// expire on their own after the window.
type CounterStore interface {
	IncrementCounter(ctx context.Context, action, clientKey string, window time.Duration) (int64, error)
}

type Guard struct {
	store CounterStore
	cfg   config.BruteForce
}

func New(store CounterStore, cfg config.BruteForce) *Guard {
	return &Guard{store: store, cfg: cfg}
}

// Check counts one attempt for (action, clientKey) and reports whether the
// caller is still within budget. Every call increments, even ones whose
// request will fail later: failed and invalid attempts burn budget too,
// which keeps enumeration and credential stuffing expensive. Unrelated
// actions never share a counter.
func (g *Guard) Check(ctx context.Context, action, clientKey string) error {
	count, err := g.store.IncrementCounter(ctx, action, clientKey, g.cfg.Window())
	if err != nil {
		return err
	}

	if count > int64(g.cfg.Budget(action)) {
		// Generic message: remaining budget and window stay hidden
		return &errors.ErrorWithStatusCode{
			Message:    "Too many requests. Please try again later.",
			StatusCode: http.StatusTooManyRequests,
			Code:       errors.CodeThrottled,
		}
	}
	return nil
}

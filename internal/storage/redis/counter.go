package redis

import (
	"context"
	"fmt"
	"time"
)

// Brute-force counters live under "bf:<action>:<clientKey>". INCR keeps
// concurrent increments atomic; EXPIRE NX pins the window to the first
// attempt so counters vanish on their own once the window elapses.
func counterKey(action, clientKey string) string {
	return fmt.Sprintf("bf:%s:%s", action, clientKey)
}

// IncrementCounter bumps the attempt counter for (action, clientKey) and
// returns the new count.
func (s *Store) IncrementCounter(ctx context.Context, action, clientKey string, window time.Duration) (int64, error) {
	key := counterKey(action, clientKey)

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

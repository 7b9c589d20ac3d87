package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openaudit/openaudit/internal/config"
	"github.com/openaudit/openaudit/internal/logger"
)

// Store holds the shared Redis client backing the session store and the
// brute-force counter store. Both are opaque TTL-bound key-value records;
// the encoding is not a compatibility surface.
type Store struct {
	client *redis.Client
}

func New(cfg *config.Redis) (*Store, error) {
	logger.Log.Info("connecting to redis", "addr", cfg.Addr)
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Store{client: client}, nil
}

func (s *Store) Cleanup() error {
	return s.client.Close()
}

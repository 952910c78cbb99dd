package session

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dinehub/admin-console/internal/config"
)

// Open builds the store selected by cfg.SessionStore. The returned close
// function releases its connections.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	sealer := NewSealer(cfg.TokenSealKey)

	switch cfg.SessionStore {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("session: connect postgres: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("session: ping postgres: %w", err)
		}
		store := NewPostgresStore(pool, sealer)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("session: ping redis: %w", err)
		}
		return NewRedisStore(client, sealer), func() { _ = client.Close() }, nil
	}

	return NewMemoryStore(), func() {}, nil
}

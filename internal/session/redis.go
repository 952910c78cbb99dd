package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "console:session:"

// RedisStore keeps sessions as JSON with a TTL matching their expiry, so
// Redis evicts them on its own.
type RedisStore struct {
	client *redis.Client
	sealer *Sealer
}

type redisRecord struct {
	AdminID   int64     `json:"admin_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewRedisStore(client *redis.Client, sealer *Sealer) *RedisStore {
	return &RedisStore{client: client, sealer: sealer}
}

func (r *RedisStore) key(id uuid.UUID) string { return redisKeyPrefix + id.String() }

func (r *RedisStore) Save(ctx context.Context, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	sealed, err := r.sealer.Seal(s.BackendToken)
	if err != nil {
		return err
	}
	data, err := json.Marshal(redisRecord{
		AdminID:   s.AdminID,
		Email:     s.Email,
		Role:      s.Role,
		Token:     sealed,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	})
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(s.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: get: %w", err)
	}
	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Session{}, fmt.Errorf("session: decode: %w", err)
	}
	s := Session{
		ID:        id,
		AdminID:   rec.AdminID,
		Email:     rec.Email,
		Role:      rec.Role,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	}
	if s.Expired(time.Now()) {
		return Session{}, ErrExpired
	}
	if s.BackendToken, err = r.sealer.Open(rec.Token); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// DeleteExpired is a no-op; keys carry their own TTL.
func (r *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

// Package session keeps signed-in admins and the backend bearer token each
// one obtained at login. Tokens are sealed before they leave the process.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// Session is one signed-in admin.
type Session struct {
	ID           uuid.UUID
	AdminID      int64
	Email        string
	Role         string
	BackendToken string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// New starts a session valid for ttl.
func New(adminID int64, email, role, backendToken string, ttl time.Duration) Session {
	now := time.Now().UTC()
	return Session{
		ID:           uuid.New(),
		AdminID:      adminID,
		Email:        email,
		Role:         role,
		BackendToken: backendToken,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Get returns ErrNotFound for unknown ids and
// ErrExpired for sessions past their expiry.
type Store interface {
	Save(ctx context.Context, s Session) error
	Get(ctx context.Context, id uuid.UUID) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired removes sessions expired at now and reports how many went.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of the pool the Postgres store needs.
// Satisfied by *pgxpool.Pool; narrow interface for testability.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const createSessionsTable = `
CREATE TABLE IF NOT EXISTS console_sessions (
    id            UUID PRIMARY KEY,
    admin_id      BIGINT      NOT NULL,
    email         TEXT        NOT NULL,
    role          TEXT        NOT NULL,
    backend_token TEXT        NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    expires_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS console_sessions_expires_at_idx ON console_sessions (expires_at)`

// PostgresStore keeps sessions in the console_sessions table.
type PostgresStore struct {
	db     DB
	sealer *Sealer
}

func NewPostgresStore(db DB, sealer *Sealer) *PostgresStore {
	return &PostgresStore{db: db, sealer: sealer}
}

// Migrate creates the sessions table when missing.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createSessionsTable); err != nil {
		return fmt.Errorf("session: migrate: %w", err)
	}
	return nil
}

func (p *PostgresStore) Save(ctx context.Context, s Session) error {
	sealed, err := p.sealer.Seal(s.BackendToken)
	if err != nil {
		return err
	}
	_, err = p.db.Exec(ctx, `
		INSERT INTO console_sessions (id, admin_id, email, role, backend_token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			backend_token = EXCLUDED.backend_token,
			role          = EXCLUDED.role,
			expires_at    = EXCLUDED.expires_at`,
		s.ID, s.AdminID, s.Email, s.Role, sealed, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	var (
		s      Session
		sealed string
	)
	err := p.db.QueryRow(ctx, `
		SELECT id, admin_id, email, role, backend_token, created_at, expires_at
		FROM console_sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.AdminID, &s.Email, &s.Role, &sealed, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("session: get: %w", err)
	}
	if s.Expired(time.Now()) {
		return Session{}, ErrExpired
	}
	if s.BackendToken, err = p.sealer.Open(sealed); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (p *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := p.db.Exec(ctx, `DELETE FROM console_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

func (p *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM console_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("session: delete expired: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB keeps rows keyed by id, enough for the statements the store issues.
type fakeDB struct {
	rows  map[uuid.UUID][]any
	execs []string
	tag   string
}

func newFakeDB() *fakeDB { return &fakeDB{rows: make(map[uuid.UUID][]any)} }

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, strings.TrimSpace(sql))
	switch {
	case strings.Contains(sql, "INSERT INTO console_sessions"):
		f.rows[args[0].(uuid.UUID)] = args
	case strings.HasPrefix(strings.TrimSpace(sql), "DELETE FROM console_sessions WHERE id"):
		delete(f.rows, args[0].(uuid.UUID))
	}
	return pgconn.NewCommandTag(f.tag), nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	return fakeRow{vals: f.rows[args[0].(uuid.UUID)]}
}

type fakeRow struct {
	vals []any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.vals == nil {
		return pgx.ErrNoRows
	}
	*dest[0].(*uuid.UUID) = r.vals[0].(uuid.UUID)
	*dest[1].(*int64) = r.vals[1].(int64)
	*dest[2].(*string) = r.vals[2].(string)
	*dest[3].(*string) = r.vals[3].(string)
	*dest[4].(*string) = r.vals[4].(string)
	*dest[5].(*time.Time) = r.vals[5].(time.Time)
	*dest[6].(*time.Time) = r.vals[6].(time.Time)
	return nil
}

func TestPostgresStoreSealsToken(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	store := NewPostgresStore(db, NewSealer("seal"))

	s := New(4, "ops@dinehub.test", "operations", "backend-token", time.Hour)
	if err := store.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	if stored := db.rows[s.ID][4].(string); stored == "backend-token" {
		t.Fatal("token stored in clear")
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.BackendToken != "backend-token" || got.AdminID != 4 {
		t.Errorf("got %+v", got)
	}
}

func TestPostgresStoreNotFoundAndExpired(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	store := NewPostgresStore(db, NewSealer("seal"))

	if _, err := store.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown: got %v", err)
	}

	s := New(4, "ops@dinehub.test", "operations", "tok", time.Hour)
	s.ExpiresAt = time.Now().Add(-time.Minute)
	store.Save(ctx, s)
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("expired: got %v", err)
	}
}

func TestPostgresStoreDeleteExpiredCounts(t *testing.T) {
	db := newFakeDB()
	db.tag = "DELETE 3"
	store := NewPostgresStore(db, NewSealer("seal"))

	n, err := store.DeleteExpired(context.Background(), time.Now())
	if err != nil || n != 3 {
		t.Fatalf("got %d, %v", n, err)
	}
}

func TestPostgresStoreMigrate(t *testing.T) {
	db := newFakeDB()
	if err := NewPostgresStore(db, NewSealer("seal")).Migrate(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "CREATE TABLE IF NOT EXISTS console_sessions") {
		t.Errorf("execs: %v", db.execs)
	}
}

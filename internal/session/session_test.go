package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestSealerRoundTrip(t *testing.T) {
	s := NewSealer("seal-key")
	sealed, err := s.Seal("backend-token-123")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sealed, "backend-token-123") {
		t.Fatal("token stored in clear")
	}
	plain, err := s.Open(sealed)
	if err != nil || plain != "backend-token-123" {
		t.Fatalf("open: got %q, %v", plain, err)
	}

	again, _ := s.Seal("backend-token-123")
	if again == sealed {
		t.Error("nonce must differ between seals")
	}
}

func TestSealerRejectsForeignKey(t *testing.T) {
	sealed, _ := NewSealer("one").Seal("tok")
	if _, err := NewSealer("two").Open(sealed); !errors.Is(err, ErrUnseal) {
		t.Fatalf("got %v", err)
	}
	if _, err := NewSealer("one").Open("!!not-base64"); !errors.Is(err, ErrUnseal) {
		t.Fatalf("got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	s := New(1, "ops@dinehub.test", "super_admin", "tok", time.Hour)
	if err := m.Save(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(ctx, s.ID)
	if err != nil || got.BackendToken != "tok" {
		t.Fatalf("get: %+v, %v", got, err)
	}

	if _, err := m.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id: got %v", err)
	}

	if err := m.Delete(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete: got %v", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	old := New(1, "a@dinehub.test", "operations", "a", time.Hour)
	old.ExpiresAt = time.Now().Add(-time.Minute)
	fresh := New(2, "b@dinehub.test", "operations", "b", time.Hour)
	m.Save(ctx, old)
	m.Save(ctx, fresh)

	if _, err := m.Get(ctx, old.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("expired: got %v", err)
	}
	n, err := m.DeleteExpired(ctx, time.Now())
	if err != nil || n != 1 {
		t.Fatalf("swept %d, %v", n, err)
	}
	if _, err := m.Get(ctx, fresh.ID); err != nil {
		t.Errorf("fresh session swept: %v", err)
	}
}

func TestSweeperRunOnce(t *testing.T) {
	sw, err := NewSweeper("@every 5m", nil)
	if err != nil {
		t.Fatal(err)
	}
	var calls int
	sw.Register("sessions", func(context.Context, time.Time) (int, error) {
		calls++
		return 2, nil
	})
	sw.Register("broken", func(context.Context, time.Time) (int, error) {
		calls++
		return 5, errors.New("db down")
	})

	if got := sw.RunOnce(context.Background()); got != 2 {
		t.Errorf("total: got %d", got)
	}
	if calls != 2 {
		t.Errorf("calls: got %d", calls)
	}
}

func TestSweeperRejectsBadSpec(t *testing.T) {
	if _, err := NewSweeper("every now and then", nil); err == nil {
		t.Fatal("expected error")
	}
}

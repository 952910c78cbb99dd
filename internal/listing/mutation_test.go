package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dinehub/admin-console/internal/apiclient"
)

type captureNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (c *captureNotifier) Notify(n Notification) {
	c.mu.Lock()
	c.notes = append(c.notes, n)
	c.mu.Unlock()
}

func (c *captureNotifier) all() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.notes...)
}

type countingRecorder struct {
	mu        sync.Mutex
	mutations map[string]int
}

func (r *countingRecorder) FetchDone(string, string, time.Duration) {}

func (r *countingRecorder) MutationDone(_, action, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutations == nil {
		r.mutations = make(map[string]int)
	}
	r.mutations[action+"/"+outcome]++
}

func TestDispatchSuccessRefetchesOnceWithCurrentQuery(t *testing.T) {
	f := newFakeFetcher(60)
	notes := &captureNotifier{}
	c := newTestController(f, time.Hour, notes)
	defer c.Close()
	ctx := context.Background()

	c.Fetch(ctx)
	c.SetFilter(ctx, statusFilter{Status: "Pending"})
	c.SetPage(ctx, 2)
	before := len(f.calls())

	var sent int
	n, err := c.Dispatch(ctx, Mutation{
		Action: "approve",
		Send: func(context.Context) (string, error) {
			sent++
			return "Restaurant approved successfully", nil
		},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if sent != 1 {
		t.Errorf("send calls: got %d", sent)
	}
	if n.Level != LevelSuccess || n.Message != "Restaurant approved successfully" {
		t.Errorf("notification: got %+v", n)
	}

	calls := f.calls()
	if len(calls)-before != 1 {
		t.Fatalf("expected exactly one refetch, got %d", len(calls)-before)
	}
	last := calls[len(calls)-1]
	if last.Page != 2 || last.Filter.Status != "Pending" {
		t.Errorf("refetch used a stale query: %+v", last)
	}
	if got := notes.all(); len(got) != 1 || got[0].Level != LevelSuccess {
		t.Errorf("notifications: got %+v", got)
	}
	if c.Snapshot().UpdateLoading {
		t.Error("update loading flag must be cleared")
	}
}

func TestDispatchPreconditionBlocksRequest(t *testing.T) {
	f := newFakeFetcher(10)
	notes := &captureNotifier{}
	rec := &countingRecorder{}
	c := New(Options[item, statusFilter]{Name: "restaurants", Fetch: f.fetch, Notifier: notes, Recorder: rec})
	defer c.Close()

	for _, reason := range []string{"", "   ", "\n\t"} {
		sent := false
		n, err := c.Dispatch(context.Background(), Mutation{
			Action:       "reject",
			Precondition: RequireText(reason, "Please provide a rejection reason."),
			Send: func(context.Context) (string, error) {
				sent = true
				return "", nil
			},
		})
		if !IsValidation(err) {
			t.Fatalf("reason %q: expected validation error, got %v", reason, err)
		}
		if sent {
			t.Fatalf("reason %q: request was sent", reason)
		}
		if n.Message != "Please provide a rejection reason." {
			t.Errorf("message: got %q", n.Message)
		}
	}

	if len(f.calls()) != 0 {
		t.Error("no fetch may happen on a validation failure")
	}
	if rec.mutations["reject/invalid"] != 3 {
		t.Errorf("recorder: got %v", rec.mutations)
	}
	if len(notes.all()) != 3 {
		t.Errorf("expected a notification per attempt, got %d", len(notes.all()))
	}
}

func TestDispatchFailureLeavesListUntouched(t *testing.T) {
	f := newFakeFetcher(10)
	notes := &captureNotifier{}
	c := newTestController(f, time.Hour, notes)
	defer c.Close()
	ctx := context.Background()

	c.Fetch(ctx)
	before := c.Snapshot()
	calls := len(f.calls())

	n, err := c.Dispatch(ctx, Mutation{
		Action:       "status",
		ErrorMessage: "Failed to update order status",
		Send: func(context.Context) (string, error) {
			return "", &apiclient.Error{Status: 409, Message: "Order already delivered"}
		},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if n.Level != LevelError || n.Message != "Order already delivered" {
		t.Errorf("notification: got %+v", n)
	}
	if len(f.calls()) != calls {
		t.Error("failed mutation must not refetch")
	}
	after := c.Snapshot()
	if len(after.Items) != len(before.Items) || after.Pagination.TotalCount != before.Pagination.TotalCount {
		t.Error("list changed after a failed mutation")
	}
}

func TestDispatchFallbackMessages(t *testing.T) {
	f := newFakeFetcher(1)
	c := newTestController(f, time.Hour, nil)
	defer c.Close()

	n, _ := c.Dispatch(context.Background(), Mutation{
		SuccessMessage: "Customer activated",
		Send:           func(context.Context) (string, error) { return "", nil },
	})
	if n.Message != "Customer activated" {
		t.Errorf("success fallback: got %q", n.Message)
	}

	n, _ = c.Dispatch(context.Background(), Mutation{
		ErrorMessage: "Failed to update customer",
		Send:         func(context.Context) (string, error) { return "", errors.New("dial tcp: refused") },
	})
	if n.Message != "Failed to update customer" {
		t.Errorf("error fallback: got %q", n.Message)
	}
}

package debounce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	values []string
	ch     chan string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan string, 16)}
}

func (r *recorder) emit(v string) {
	r.mu.Lock()
	r.values = append(r.values, v)
	r.mu.Unlock()
	r.ch <- v
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.values...)
}

func TestOnlyLastValueEmitted(t *testing.T) {
	rec := newRecorder()
	d := New(100*time.Millisecond, rec.emit)

	// "piz" then "pizza" within 20ms of each other.
	d.Trigger("p")
	d.Trigger("pi")
	d.Trigger("piz")
	time.Sleep(20 * time.Millisecond)
	d.Trigger("pizz")
	d.Trigger("pizza")

	select {
	case v := <-rec.ch:
		if v != "pizza" {
			t.Fatalf("emitted %q, want pizza", v)
		}
	case <-time.After(time.Second):
		t.Fatal("nothing emitted")
	}

	time.Sleep(250 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Fatalf("expected exactly one emission, got %v", got)
	}
}

func TestSeparateWindowsEmitSeparately(t *testing.T) {
	rec := newRecorder()
	d := New(30*time.Millisecond, rec.emit)

	d.Trigger("a")
	<-rec.ch
	d.Trigger("b")
	<-rec.ch

	got := rec.snapshot()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %v", got)
	}
}

func TestQuietWindowRestarts(t *testing.T) {
	rec := newRecorder()
	d := New(80*time.Millisecond, rec.emit)

	start := time.Now()
	d.Trigger("a")
	time.Sleep(50 * time.Millisecond)
	d.Trigger("ab")

	<-rec.ch
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Fatalf("emitted after %v; the window should restart on every change", elapsed)
	}
}

func TestStopDropsPending(t *testing.T) {
	rec := newRecorder()
	d := New(20*time.Millisecond, rec.emit)

	d.Trigger("x")
	d.Stop()
	d.Trigger("y")
	time.Sleep(60 * time.Millisecond)

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("expected no emission, got %v", got)
	}
}

func TestDefaultDelay(t *testing.T) {
	d := New(0, func(string) {})
	if d.Delay() != DefaultDelay {
		t.Fatalf("got %v", d.Delay())
	}
}

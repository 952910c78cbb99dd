// Package listing holds the list-screen machinery shared by every management
// screen: query state, a fetch orchestrator with a sequence guard, and a
// mutation dispatcher that refetches after each successful change.
package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dinehub/admin-console/internal/apiclient"
	"github.com/dinehub/admin-console/internal/debounce"
	"github.com/dinehub/admin-console/internal/logger"
	"github.com/dinehub/admin-console/internal/pagination"
)

// Fetcher issues one paginated list request for q.
type Fetcher[T any, F comparable] func(ctx context.Context, q Query[F]) (Page[T], error)

// Options configures a Controller. Only Name and Fetch are required.
type Options[T any, F comparable] struct {
	Name  string
	Fetch Fetcher[T, F]

	// Noun is used in the fallback error message, e.g. "restaurants".
	Noun string

	SearchDelay time.Duration
	Notifier    Notifier
	Recorder    Recorder
	Log         logrus.FieldLogger

	// Context bounds every request the controller issues, including the
	// ones started by the debounce timer. Defaults to context.Background.
	Context context.Context
}

// Controller owns the query state and list result of one screen.
type Controller[T any, F comparable] struct {
	name     string
	noun     string
	fetch    Fetcher[T, F]
	notifier Notifier
	recorder Recorder
	log      *logrus.Entry

	ctx  context.Context
	stop context.CancelFunc

	search *debounce.Debouncer[string]

	mu       sync.Mutex
	query    Query[F]
	result   Result[T]
	fetched  Query[F] // query behind result.Pagination
	seq      uint64
	inflight context.CancelFunc
	version  uint64
	closed   bool

	subMu     sync.Mutex
	subs      map[int]func(State[T, F])
	nextSub   int
	published uint64
}

// New creates a controller with the mount-time query. It does not fetch.
func New[T any, F comparable](opts Options[T, F]) *Controller[T, F] {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := context.WithCancel(parent)

	c := &Controller[T, F]{
		name:     opts.Name,
		noun:     opts.Noun,
		fetch:    opts.Fetch,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		log:      logger.Module(opts.Log, "listing").WithField("screen", opts.Name),
		ctx:      ctx,
		stop:     stop,
		query:    NewQuery[F](),
		subs:     make(map[int]func(State[T, F])),
	}
	if c.noun == "" {
		c.noun = opts.Name
	}
	if c.notifier == nil {
		c.notifier = discardNotifier{}
	}
	if c.recorder == nil {
		c.recorder = discardRecorder{}
	}
	c.search = debounce.New(opts.SearchDelay, func(s string) {
		if _, err := c.ApplySearch(c.ctx, s); err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
			c.log.WithError(err).Debug("debounced search fetch failed")
		}
	})
	return c
}

// Name returns the screen name.
func (c *Controller[T, F]) Name() string { return c.name }

// Query returns the current query.
func (c *Controller[T, F]) Query() Query[F] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Snapshot returns the current result.
func (c *Controller[T, F]) Snapshot() Result[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// State returns the current query, result and footer together.
func (c *Controller[T, F]) State() State[T, F] {
	pending := c.SearchPending()
	c.mu.Lock()
	defer c.mu.Unlock()
	st := newState(c.name, c.query, c.result)
	st.SearchPending = pending
	return st
}

// Subscribe registers fn to receive every state change. The returned
// function removes the subscription.
func (c *Controller[T, F]) Subscribe(fn func(State[T, F])) func() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// SetSearch feeds raw search input through the debouncer. The fetch happens
// once the input has been stable for the search delay.
func (c *Controller[T, F]) SetSearch(raw string) {
	c.search.Trigger(raw)
}

// SearchPending reports whether search input is waiting for its quiet window.
func (c *Controller[T, F]) SearchPending() bool { return c.search.Pending() }

// ApplySearch sets the search text immediately, resetting the page to 1.
func (c *Controller[T, F]) ApplySearch(ctx context.Context, search string) (Result[T], error) {
	return c.update(ctx, func(q *Query[F]) (bool, error) {
		if q.Search == search {
			return false, nil
		}
		q.Search = search
		q.Page = 1
		return true, nil
	})
}

// SetFilter replaces the filter, resetting the page to 1.
func (c *Controller[T, F]) SetFilter(ctx context.Context, f F) (Result[T], error) {
	return c.update(ctx, func(q *Query[F]) (bool, error) {
		if q.Filter == f {
			return false, nil
		}
		q.Filter = f
		q.Page = 1
		return true, nil
	})
}

// SetPage moves to page n. Pages past the last known page are refused. While
// a search, filter or page-size change has not committed yet the last page is
// unknown, so only page 1 is accepted.
func (c *Controller[T, F]) SetPage(ctx context.Context, n int) (Result[T], error) {
	return c.update(ctx, func(q *Query[F]) (bool, error) {
		if n < 1 {
			return false, ErrInvalidPage
		}
		if p := c.result.Pagination; p != nil && p.TotalPages > 0 {
			last := p.TotalPages
			if !c.fetched.sameSet(*q) {
				last = 1
			}
			if n > last {
				return false, ErrInvalidPage
			}
		}
		if q.Page == n {
			return false, nil
		}
		q.Page = n
		return true, nil
	})
}

// SetPageSize changes rows per page, resetting the page to 1.
func (c *Controller[T, F]) SetPageSize(ctx context.Context, size int) (Result[T], error) {
	return c.update(ctx, func(q *Query[F]) (bool, error) {
		if !pagination.ValidPageSize(size) {
			return false, ErrInvalidPageSize
		}
		if q.PageSize == size {
			return false, nil
		}
		q.PageSize = size
		q.Page = 1
		return true, nil
	})
}

// Events adapts the controller to the pagination footer's outputs. The
// returned func reports the first error a fired event ran into.
func (c *Controller[T, F]) Events(ctx context.Context) (pagination.Events, func() error) {
	var first error
	keep := func(err error) {
		if first == nil {
			first = err
		}
	}
	return pagination.Events{
		OnPageChange: func(p int) {
			_, err := c.SetPage(ctx, p)
			keep(err)
		},
		OnRowsPerPageChange: func(s int) {
			_, err := c.SetPageSize(ctx, s)
			keep(err)
		},
	}, func() error { return first }
}

// Fetch issues a request for the current query. Only the most recently
// issued fetch commits its answer; an older one returns ErrSuperseded.
// A failed fetch is reported in the returned Result's Error as well as err.
func (c *Controller[T, F]) Fetch(ctx context.Context) (Result[T], error) {
	return c.run(ctx)
}

// Refetch pulls authoritative state for the current query, typically after
// a mutation.
func (c *Controller[T, F]) Refetch(ctx context.Context) (Result[T], error) {
	return c.run(ctx)
}

// Close stops pending searches and cancels any in-flight fetch.
func (c *Controller[T, F]) Close() {
	c.search.Stop()
	c.mu.Lock()
	c.closed = true
	if c.inflight != nil {
		c.inflight()
		c.inflight = nil
	}
	c.mu.Unlock()
	c.stop()

	c.subMu.Lock()
	c.subs = make(map[int]func(State[T, F]))
	c.subMu.Unlock()
}

func (c *Controller[T, F]) update(ctx context.Context, apply func(q *Query[F]) (bool, error)) (Result[T], error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result[T]{}, ErrClosed
	}
	changed, err := apply(&c.query)
	res := c.result
	c.mu.Unlock()
	if err != nil || !changed {
		return res, err
	}
	return c.run(ctx)
}

func (c *Controller[T, F]) run(ctx context.Context) (Result[T], error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result[T]{}, ErrClosed
	}
	c.seq++
	seq := c.seq
	if c.inflight != nil {
		c.inflight()
	}
	// The request outlives neither the controller nor a newer fetch, but it
	// does outlive the caller: a browser disconnect must not commit an error.
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stopAfter := context.AfterFunc(c.ctx, cancel)
	c.inflight = cancel
	q := c.query
	c.result.IsLoading = true
	loading := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(loading)

	start := time.Now()
	page, err := c.fetch(fctx, q)
	elapsed := time.Since(start)
	stopAfter()
	cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Result[T]{}, ErrClosed
	}
	if seq != c.seq {
		res := c.result
		c.mu.Unlock()
		c.recorder.FetchDone(c.name, "stale", elapsed)
		c.log.WithField("seq", seq).Debug("dropped superseded list response")
		return res, ErrSuperseded
	}
	c.inflight = nil
	if err != nil {
		msg := apiclient.Message(err, "Failed to fetch "+c.noun)
		c.result = Result[T]{Items: []T{}, Error: &msg, UpdateLoading: c.result.UpdateLoading}
	} else {
		items := page.Items
		if items == nil {
			items = []T{}
		}
		p := normalize(page, q)
		c.result = Result[T]{Items: items, Pagination: &p, UpdateLoading: c.result.UpdateLoading}
		c.fetched = q
	}
	committed := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(committed)

	if err != nil {
		c.recorder.FetchDone(c.name, "error", elapsed)
		c.log.WithError(err).WithField("page", q.Page).Warn("list fetch failed")
		return committed.Result, err
	}
	c.recorder.FetchDone(c.name, "ok", elapsed)
	return committed.Result, nil
}

type versioned[T any, F comparable] struct {
	State[T, F]
	version uint64
}

func (c *Controller[T, F]) snapshotLocked() versioned[T, F] {
	c.version++
	return versioned[T, F]{State: newState(c.name, c.query, c.result), version: c.version}
}

// publish delivers s unless a newer state was already delivered, so
// subscribers never see a loading state after the result that ended it.
func (c *Controller[T, F]) publish(s versioned[T, F]) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if s.version <= c.published {
		return
	}
	c.published = s.version
	for _, fn := range c.subs {
		fn(s.State)
	}
}

func (c *Controller[T, F]) setUpdateLoading(v bool) {
	c.mu.Lock()
	c.result.UpdateLoading = v
	s := c.snapshotLocked()
	c.mu.Unlock()
	c.publish(s)
}

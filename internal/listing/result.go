package listing

import "github.com/dinehub/admin-console/internal/pagination"

// Result is the list slice owned by one controller. It is replaced as a
// whole on each committed fetch, never patched.
type Result[T any] struct {
	Items         []T         `json:"items"`
	Pagination    *Pagination `json:"pagination"`
	IsLoading     bool        `json:"is_loading"`
	UpdateLoading bool        `json:"update_loading"`
	Error         *string     `json:"error"`
}

// Empty reports a completed fetch that found nothing. A failed fetch is not empty.
func (r Result[T]) Empty() bool {
	return !r.IsLoading && r.Error == nil && r.Pagination != nil && len(r.Items) == 0
}

// Failed reports whether the last committed fetch failed.
func (r Result[T]) Failed() bool { return r.Error != nil }

// State is everything a screen needs to render.
type State[T any, F comparable] struct {
	Screen string          `json:"screen"`
	Query  Query[F]        `json:"query"`
	Result Result[T]       `json:"result"`
	Footer pagination.View `json:"footer"`
	Empty  bool            `json:"empty"`

	// SearchPending is set while typed search text waits for its quiet window.
	SearchPending bool `json:"search_pending"`
}

func newState[T any, F comparable](screen string, q Query[F], r Result[T]) State[T, F] {
	st := State[T, F]{Screen: screen, Query: q, Result: r, Empty: r.Empty()}
	if r.Pagination != nil {
		st.Footer = pagination.Compute(r.Pagination.TotalCount, q.Page, q.PageSize)
	}
	if st.Result.Items == nil {
		st.Result.Items = []T{}
	}
	return st
}

// Package pagination turns (total, page, page size) into what a list footer shows.
package pagination

import "fmt"

// DefaultPageSize is the rows-per-page a screen starts with.
const DefaultPageSize = 10

// PageSizes are the rows-per-page options offered by the footer.
var PageSizes = []int{10, 20, 50, 100}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// View is the footer state. When Visible is false nothing is rendered.
type View struct {
	Visible      bool   `json:"visible"`
	TotalItems   int    `json:"total_items"`
	CurrentPage  int    `json:"current_page"`
	RowsPerPage  int    `json:"rows_per_page"`
	TotalPages   int    `json:"total_pages"`
	StartIndex   int    `json:"start_index"`
	EndIndex     int    `json:"end_index"`
	PrevDisabled bool   `json:"prev_disabled"`
	NextDisabled bool   `json:"next_disabled"`
	RangeText    string `json:"range_text"`
	PageSizes    []int  `json:"page_sizes"`
}

// Compute derives the footer for totalItems spread over pages of rowsPerPage.
// Start and End are 1-based and inclusive.
func Compute(totalItems, currentPage, rowsPerPage int) View {
	if totalItems <= 0 {
		return View{}
	}
	if rowsPerPage <= 0 {
		rowsPerPage = DefaultPageSize
	}
	totalPages := (totalItems + rowsPerPage - 1) / rowsPerPage
	if currentPage < 1 {
		currentPage = 1
	}
	if currentPage > totalPages {
		currentPage = totalPages
	}

	start := (currentPage-1)*rowsPerPage + 1
	end := currentPage * rowsPerPage
	if end > totalItems {
		end = totalItems
	}
	if start > totalItems {
		start = totalItems
	}

	return View{
		Visible:      true,
		TotalItems:   totalItems,
		CurrentPage:  currentPage,
		RowsPerPage:  rowsPerPage,
		TotalPages:   totalPages,
		StartIndex:   start,
		EndIndex:     end,
		PrevDisabled: currentPage == 1,
		NextDisabled: currentPage >= totalPages,
		RangeText:    fmt.Sprintf("%d–%d of %d", start, end, totalItems),
		PageSizes:    PageSizes,
	}
}

// Events are the footer's outputs. Resetting the page after a rows-per-page
// change is the caller's job.
type Events struct {
	OnPageChange        func(page int)
	OnRowsPerPageChange func(size int)
}

// Prev fires OnPageChange(page-1) unless previous is disabled.
func (v View) Prev(ev Events) bool {
	if !v.Visible || v.PrevDisabled || ev.OnPageChange == nil {
		return false
	}
	ev.OnPageChange(v.CurrentPage - 1)
	return true
}

// Next fires OnPageChange(page+1) unless next is disabled.
func (v View) Next(ev Events) bool {
	if !v.Visible || v.NextDisabled || ev.OnPageChange == nil {
		return false
	}
	ev.OnPageChange(v.CurrentPage + 1)
	return true
}

// GoTo fires OnPageChange(page) for a page the footer can reach. With nothing
// rendered only page 1 is reachable.
func (v View) GoTo(ev Events, page int) bool {
	if page < 1 || ev.OnPageChange == nil {
		return false
	}
	if (v.Visible && page > v.TotalPages) || (!v.Visible && page > 1) {
		return false
	}
	ev.OnPageChange(page)
	return true
}

// ChangeRowsPerPage fires OnRowsPerPageChange for an allowed size.
func (v View) ChangeRowsPerPage(ev Events, size int) bool {
	if !ValidPageSize(size) || ev.OnRowsPerPageChange == nil {
		return false
	}
	ev.OnRowsPerPageChange(size)
	return true
}

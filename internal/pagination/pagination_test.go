package pagination

import "testing"

func TestComputeFortyFiveItems(t *testing.T) {
	first := Compute(45, 1, 10)
	if first.StartIndex != 1 || first.EndIndex != 10 {
		t.Errorf("page 1: got %d–%d", first.StartIndex, first.EndIndex)
	}
	if !first.PrevDisabled || first.NextDisabled {
		t.Errorf("page 1: prev=%v next=%v", first.PrevDisabled, first.NextDisabled)
	}

	last := Compute(45, 5, 10)
	if last.StartIndex != 41 || last.EndIndex != 45 {
		t.Errorf("page 5: got %d–%d", last.StartIndex, last.EndIndex)
	}
	if !last.NextDisabled {
		t.Error("next must be disabled on the last page")
	}
	if last.RangeText != "41–45 of 45" {
		t.Errorf("range text: got %q", last.RangeText)
	}
}

func TestComputeTotalPages(t *testing.T) {
	for total := 1; total <= 250; total++ {
		for _, size := range PageSizes {
			v := Compute(total, 1, size)
			want := total / size
			if total%size != 0 {
				want++
			}
			if v.TotalPages != want {
				t.Fatalf("total=%d size=%d: got %d pages, want %d", total, size, v.TotalPages, want)
			}
			lastPage := Compute(total, v.TotalPages, size)
			if !lastPage.NextDisabled {
				t.Fatalf("total=%d size=%d: next enabled on last page", total, size)
			}
			if v.TotalPages > 1 && v.NextDisabled {
				t.Fatalf("total=%d size=%d: next disabled on page 1 of %d", total, size, v.TotalPages)
			}
		}
	}
}

func TestComputeEmpty(t *testing.T) {
	v := Compute(0, 3, 10)
	if v.Visible {
		t.Fatal("footer must not render for zero items")
	}
}

func TestComputeClampsPastLastPage(t *testing.T) {
	v := Compute(3, 5, 10)
	if v.CurrentPage != 1 || v.TotalPages != 1 {
		t.Fatalf("got page %d of %d", v.CurrentPage, v.TotalPages)
	}
	if v.RangeText != "1–3 of 3" || !v.NextDisabled || !v.PrevDisabled {
		t.Errorf("got %+v", v)
	}
}

func TestGoTo(t *testing.T) {
	var pages []int
	ev := Events{OnPageChange: func(p int) { pages = append(pages, p) }}

	v := Compute(45, 1, 10)
	for _, p := range []int{0, 6} {
		if v.GoTo(ev, p) {
			t.Errorf("page %d must not fire", p)
		}
	}
	if !v.GoTo(ev, 5) {
		t.Error("page 5 of 5 must fire")
	}

	var hidden View
	if hidden.GoTo(ev, 2) {
		t.Error("only page 1 is reachable without a footer")
	}
	if !hidden.GoTo(ev, 1) {
		t.Error("page 1 must fire without a footer")
	}
	if len(pages) != 2 || pages[0] != 5 || pages[1] != 1 {
		t.Errorf("fired: %v", pages)
	}
}

func TestEvents(t *testing.T) {
	var page, size int
	ev := Events{
		OnPageChange:        func(p int) { page = p },
		OnRowsPerPageChange: func(s int) { size = s },
	}

	v := Compute(45, 1, 10)
	if v.Prev(ev) {
		t.Error("prev must not fire on page 1")
	}
	if !v.Next(ev) || page != 2 {
		t.Errorf("next: page=%d", page)
	}

	last := Compute(45, 5, 10)
	if last.Next(ev) {
		t.Error("next must not fire on the last page")
	}
	if !last.Prev(ev) || page != 4 {
		t.Errorf("prev: page=%d", page)
	}

	if v.ChangeRowsPerPage(ev, 15) {
		t.Error("15 is not an allowed size")
	}
	if !v.ChangeRowsPerPage(ev, 50) || size != 50 {
		t.Errorf("size=%d", size)
	}
}

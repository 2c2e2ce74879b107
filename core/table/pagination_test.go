package table

import (
	"testing"
)

func TestPagination_setPageClamps(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
		want  int
	}{
		{"negative page", 100, -3, 0},
		{"within bounds", 100, 5, 5},
		{"last page", 100, 9, 9},
		{"past the end", 100, 50, 9},
		{"unknown total", 0, 7, 7},
		{"exactly one page", 5, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pg := NewPagination(DefaultLimit)
			pg.SetTotalCount(tt.total)
			pg.SetPage(tt.page)
			if got := pg.Page(); got != tt.want {
				t.Errorf("Page() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPagination_setLimit(t *testing.T) {
	pg := NewPagination(DefaultLimit)
	pg.SetTotalCount(500)
	pg.SetPage(4)

	// switching the page size resets to the first page
	pg.SetLimit(50)
	if pg.Limit() != 50 || pg.Page() != 0 {
		t.Errorf("Limit(), Page() = %d, %d; want 50, 0", pg.Limit(), pg.Page())
	}

	// disallowed sizes are ignored entirely
	pg.SetPage(2)
	pg.SetLimit(33)
	if pg.Limit() != 50 || pg.Page() != 2 {
		t.Errorf("Limit(), Page() = %d, %d; want 50, 2", pg.Limit(), pg.Page())
	}
}

func TestPagination_setTotalCountClampsPage(t *testing.T) {
	pg := NewPagination(DefaultLimit)
	pg.SetTotalCount(100)
	pg.SetPage(9)

	// a shrunk result set pulls the current page back into range
	pg.SetTotalCount(31)
	if got := pg.Page(); got != 3 {
		t.Errorf("Page() = %d, want 3", got)
	}

	// an emptied result set resets to the first page
	pg.SetTotalCount(0)
	if got := pg.Page(); got != 0 {
		t.Errorf("Page() = %d after an empty total, want 0", got)
	}

	pg.SetPage(5)
	pg.SetTotalCount(-1)
	if pg.TotalCount() != 0 || pg.Page() != 0 {
		t.Errorf("TotalCount(), Page() = %d, %d; want 0, 0", pg.TotalCount(), pg.Page())
	}
}

func TestPagination_totalPages(t *testing.T) {
	tests := []struct {
		total int
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 25, 4},
		{101, 25, 5},
	}
	for _, tt := range tests {
		pg := NewPagination(tt.limit)
		pg.SetTotalCount(tt.total)
		if got := pg.TotalPages(); got != tt.want {
			t.Errorf("TotalPages() with total=%d limit=%d = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestPagination_apiParamsAreOneBased(t *testing.T) {
	pg := NewPagination(25)
	pg.SetTotalCount(100)
	pg.SetPage(2)

	params := pg.APIParams()
	if got := params.Get("page"); got != "3" {
		t.Errorf(`params.Get("page") = %q, want "3"`, got)
	}
	if got := params.Get("limit"); got != "25" {
		t.Errorf(`params.Get("limit") = %q, want "25"`, got)
	}
}

func TestPagination_meta(t *testing.T) {
	pg := NewPagination(DefaultLimit)
	pg.SetTotalCount(35)
	pg.SetPage(1)

	want := PaginationMeta{Page: 1, Limit: 10, Total: 35, TotalPages: 4, HasNext: true, HasPrev: true}
	if got := pg.Meta(); got != want {
		t.Errorf("Meta() = %+v, want %+v", got, want)
	}

	pg.SetPage(3)
	meta := pg.Meta()
	if meta.HasNext || !meta.HasPrev {
		t.Errorf("Meta() on the last page = %+v", meta)
	}
}

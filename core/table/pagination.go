package table

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 10
	maxLimit     = 100
)

// DefaultLimits is the allowed page-size set when a Pagination is built
// without an explicit one.
var DefaultLimits = []int{10, 25, 50, 100}

// PaginationMeta is the wire representation of the pagination state, attached
// to every list response.
type PaginationMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Pagination tracks page, limit and total count and derives the API params.
// Pages are 0-based here; APIParams is the single place the 1-based upstream
// convention is applied. Not safe for concurrent use on its own; the owning
// Source guards it.
type Pagination struct {
	page    int
	limit   int
	allowed []int
	total   int
}

func NewPagination(limit int, allowed ...int) *Pagination {
	if len(allowed) == 0 {
		allowed = DefaultLimits
	}
	pg := &Pagination{limit: DefaultLimit, allowed: allowed}
	pg.SetLimit(limit)
	return pg
}

func (pg *Pagination) Page() int       { return pg.page }
func (pg *Pagination) Limit() int      { return pg.limit }
func (pg *Pagination) TotalCount() int { return pg.total }

func (pg *Pagination) TotalPages() int {
	if pg.total <= 0 {
		return 0
	}
	return (pg.total + pg.limit - 1) / pg.limit
}

func (pg *Pagination) HasNext() bool { return pg.page < pg.TotalPages()-1 }
func (pg *Pagination) HasPrev() bool { return pg.page > 0 }

// SetPage moves to page n, clamped to [0, TotalPages-1] when the total is
// known. With no known total the target page is kept as-is; SetTotalCount
// reconciles it once the count arrives.
func (pg *Pagination) SetPage(n int) {
	if n < 0 {
		n = 0
	}
	if tp := pg.TotalPages(); tp > 0 && n > tp-1 {
		n = tp - 1
	}
	pg.page = n
}

// SetLimit switches the page size and resets the page to 0: the old page
// offset is meaningless under a new page size. Values outside the allowed set
// are ignored.
func (pg *Pagination) SetLimit(n int) {
	for _, allowed := range pg.allowed {
		if n == allowed {
			pg.limit = n
			pg.page = 0
			return
		}
	}
}

// SetTotalCount records the total reported by the last fetch and clamps the
// current page into the new bounds: down if it now exceeds them, and back to
// the first page when the result set turned out empty.
func (pg *Pagination) SetTotalCount(n int) {
	if n < 0 {
		n = 0
	}
	pg.total = n
	if pg.TotalPages() == 0 {
		pg.page = 0
		return
	}
	pg.SetPage(pg.page)
}

func (pg *Pagination) Reset() {
	pg.page = 0
	pg.total = 0
}

// APIParams derives the query params the upstream expects. The upstream is
// 1-based; this is the only place the conversion happens.
func (pg *Pagination) APIParams() url.Values {
	v := make(url.Values, 2)
	v.Set("page", strconv.Itoa(pg.page+1))
	v.Set("limit", strconv.Itoa(pg.limit))
	return v
}

func (pg *Pagination) Meta() PaginationMeta {
	return PaginationMeta{
		Page:       pg.page,
		Limit:      pg.limit,
		Total:      pg.total,
		TotalPages: pg.TotalPages(),
		HasNext:    pg.HasNext(),
		HasPrev:    pg.HasPrev(),
	}
}

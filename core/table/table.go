package table

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/trezcool/darasa/core/cache"
)

type (
	// Config describes one table-backed screen: the upstream endpoint, the
	// params every fetch carries, and the cache options (scope, TTL) applied
	// to each load.
	Config struct {
		Endpoint      string
		DefaultParams url.Values
		CacheOptions  cache.Options
		Pagination    *Pagination // optional; a default one is created when nil
		AutoLoad      bool        // when set, UpdateFilters and Init trigger a load
	}

	// State is the render-ready snapshot of a Source. On a failed load Err is
	// set and the previous items are preserved (last-known-good, no flicker).
	State struct {
		Items       []json.RawMessage
		Total       int
		Loading     bool
		Err         string
		LastRefresh time.Time
	}

	// Source composes the cached client, the pagination machine and a filter
	// set into a single fetch-and-render-ready state. One Source per consumer;
	// all state is owned and mutated by it alone.
	Source struct {
		mu      sync.Mutex
		cfg     Config
		cache   *cache.Service
		pg      *Pagination
		filters url.Values
		state   State
	}
)

func NewSource(svc *cache.Service, cfg Config) *Source {
	pg := cfg.Pagination
	if pg == nil {
		pg = NewPagination(DefaultLimit)
	}
	return &Source{
		cfg:     cfg,
		cache:   svc,
		pg:      pg,
		filters: make(url.Values),
		state:   State{Items: []json.RawMessage{}},
	}
}

// Init performs the initial load when the Source is configured to auto-load;
// otherwise the Source holds empty state until Load or Refresh is called.
func (src *Source) Init(ctx context.Context) error {
	if !src.cfg.AutoLoad {
		return nil
	}
	return src.Load(ctx, false)
}

// Load fetches the current page: default params, filters and pagination params
// merged, resolved through the cache service, normalized, and folded into the
// state. The total count feeds back into the pagination machine.
func (src *Source) Load(ctx context.Context, forceRefresh bool) error {
	src.mu.Lock()
	defer src.mu.Unlock()
	return src.load(ctx, forceRefresh)
}

// Refresh bypasses the cache and re-fetches.
func (src *Source) Refresh(ctx context.Context) error {
	return src.Load(ctx, true)
}

// load runs with src.mu held.
func (src *Source) load(ctx context.Context, forceRefresh bool) error {
	src.state.Loading = true

	params := src.mergedParams()
	opts := src.cfg.CacheOptions
	opts.ForceRefresh = forceRefresh

	raw, err := src.cache.Get(ctx, src.cfg.Endpoint, params, opts)
	src.state.Loading = false
	if err != nil {
		// keep the last-known-good items
		src.state.Err = err.Error()
		return err
	}

	res := Normalize(raw)
	src.state.Items = res.Items
	src.state.Total = res.Total
	src.state.Err = ""
	src.state.LastRefresh = time.Now()
	src.pg.SetTotalCount(res.Total)
	return nil
}

// UpdateFilters merges newFilters into the existing filter set and resets the
// page to 0 — unless newFilters carries an explicit "page", in which case the
// pagination is synced to it instead. When the Source auto-loads, the merged
// filters are applied with an immediate load.
func (src *Source) UpdateFilters(ctx context.Context, newFilters url.Values) error {
	src.mu.Lock()
	defer src.mu.Unlock()

	explicitPage := false
	for name, vals := range newFilters {
		if name == "page" {
			if len(vals) > 0 {
				if n, err := strconv.Atoi(vals[0]); err == nil {
					src.pg.SetPage(n)
					explicitPage = true
				}
			}
			continue
		}
		src.filters[name] = vals
	}
	if !explicitPage {
		src.pg.SetPage(0)
	}

	if !src.cfg.AutoLoad {
		return nil
	}
	return src.load(ctx, false)
}

// SetPage moves the pagination and reloads when auto-loading.
func (src *Source) SetPage(ctx context.Context, page int) error {
	src.mu.Lock()
	defer src.mu.Unlock()

	src.pg.SetPage(page)
	if !src.cfg.AutoLoad {
		return nil
	}
	return src.load(ctx, false)
}

// SetLimit switches the page size (resetting to the first page) and reloads
// when auto-loading.
func (src *Source) SetLimit(ctx context.Context, limit int) error {
	src.mu.Lock()
	defer src.mu.Unlock()

	src.pg.SetLimit(limit)
	if !src.cfg.AutoLoad {
		return nil
	}
	return src.load(ctx, false)
}

// State returns a snapshot; the items slice is shared but never mutated after
// being set.
func (src *Source) State() State {
	src.mu.Lock()
	defer src.mu.Unlock()
	return src.state
}

func (src *Source) Meta() PaginationMeta {
	src.mu.Lock()
	defer src.mu.Unlock()
	return src.pg.Meta()
}

func (src *Source) mergedParams() url.Values {
	merged := make(url.Values, len(src.cfg.DefaultParams)+len(src.filters)+2)
	for name, vals := range src.cfg.DefaultParams {
		merged[name] = vals
	}
	for name, vals := range src.filters {
		merged[name] = vals
	}
	for name, vals := range src.pg.APIParams() {
		merged[name] = vals
	}
	return merged
}

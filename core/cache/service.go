package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/trezcool/darasa/core"
)

// ErrDuplicateRequest is returned when a caller opted into strict duplicate
// prevention and an identical request is already in flight. Distinct from an
// upstream error so callers can ignore it silently.
var ErrDuplicateRequest = errors.New("an identical request is already in flight")

// Upstream performs the actual network fetch on a cache miss.
// services/rest implements it.
type Upstream interface {
	Get(ctx context.Context, endpoint string, params url.Values, token string) (json.RawMessage, error)
}

type (
	// Options tunes a single Service.Get call.
	Options struct {
		TTL                  time.Duration // 0 -> Service default
		ForceRefresh         bool          // bypass the store and fetch; overwrites on success
		StaleWhileRevalidate bool          // serve an expired entry and refresh in the background
		FailOnDuplicate      bool          // reject with ErrDuplicateRequest instead of joining an in-flight fetch
		Scope                Scope
		Token                string // bearer token forwarded to the upstream as-is
	}

	// Stats is a snapshot of the service counters.
	Stats struct {
		Hits          uint64 `json:"hits"`
		Misses        uint64 `json:"misses"`
		StaleServed   uint64 `json:"stale_served"`
		UpstreamCalls uint64 `json:"upstream_calls"`
		Entries       int    `json:"entries"`
	}

	// Service is the read-through cached client: store lookup, in-flight
	// coalescing, upstream fetch, store population. Explicitly constructed
	// and injected (never a package-level singleton) so tests and independent
	// dashboards get isolated instances.
	Service struct {
		store    *Store
		upstream Upstream
		logger   core.Logger

		defaultTTL time.Duration
		staleTTL   time.Duration

		group   singleflight.Group
		mu      sync.Mutex
		pending map[string]struct{}
		seq     map[string]uint64 // per-key dispatch sequence; stale completions do not write

		hits, misses, stale, calls uint64
	}
)

func NewService(store *Store, upstream Upstream, logger core.Logger, conf core.CacheConfig) *Service {
	return &Service{
		store:      store,
		upstream:   upstream,
		logger:     logger,
		defaultTTL: conf.DefaultTTL,
		staleTTL:   conf.StaleTTL,
		pending:    make(map[string]struct{}),
		seq:        make(map[string]uint64),
	}
}

// Get resolves endpoint+params+scope from the store, an in-flight fetch, or
// the upstream. Errors are propagated and never populate the store.
func (svc *Service) Get(ctx context.Context, endpoint string, params url.Values, opts Options) (json.RawMessage, error) {
	key := BuildKey(endpoint, params, opts.Scope)
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = svc.defaultTTL
	}

	if !opts.ForceRefresh {
		if val, ok := svc.store.Get(key); ok {
			atomic.AddUint64(&svc.hits, 1)
			return val, nil
		}
		if opts.StaleWhileRevalidate {
			if val, stale, ok := svc.store.GetStale(key, svc.staleTTL); ok && stale {
				atomic.AddUint64(&svc.stale, 1)
				go svc.refresh(endpoint, params, key, ttl, opts.Token)
				return val, nil
			}
		}
		// an explicit bypass is not a miss; only genuine lookups count
		atomic.AddUint64(&svc.misses, 1)
	}

	if opts.FailOnDuplicate && svc.inFlight(key) {
		return nil, ErrDuplicateRequest
	}
	if opts.ForceRefresh {
		// a force-refreshed fetch must hit the network even when a plain fetch
		// for the same key is in flight; drop the shared registration so a new
		// flight starts. The superseded flight still completes but its store
		// write is discarded by the sequence check.
		svc.mu.Lock()
		svc.group.Forget(key)
		delete(svc.pending, key)
		svc.mu.Unlock()
	}
	return svc.fetch(ctx, endpoint, params, key, ttl, opts.Token)
}

// fetch coalesces concurrent identical requests into one upstream call.
// All callers observe the same value or the same error; the registration is
// dropped once the flight settles so a failure never blocks retries.
func (svc *Service) fetch(ctx context.Context, endpoint string, params url.Values, key string, ttl time.Duration, token string) (json.RawMessage, error) {
	svc.mu.Lock()
	svc.pending[key] = struct{}{}
	svc.mu.Unlock()

	val, err, _ := svc.group.Do(key, func() (interface{}, error) {
		seq := svc.nextSeq(key)
		atomic.AddUint64(&svc.calls, 1)

		res, err := svc.upstream.Get(ctx, endpoint, params, token)
		if err != nil {
			return nil, err
		}
		if svc.currentSeq(key) == seq {
			svc.store.Set(key, res, ttl)
		}
		return res, nil
	})

	svc.mu.Lock()
	delete(svc.pending, key)
	svc.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return val.(json.RawMessage), nil
}

// refresh re-fetches a stale entry in the background. Detached from the
// request context; the upstream client applies its own timeout.
func (svc *Service) refresh(endpoint string, params url.Values, key string, ttl time.Duration, token string) {
	if _, err := svc.fetch(context.Background(), endpoint, params, key, ttl, token); err != nil {
		svc.logger.Debug(fmt.Sprintf("background refresh of %s failed: %v", endpoint, err))
	}
}

// InvalidateUser drops every cached entry scoped to the given user.
// Called on selection/context switches so the next read cannot leak data
// from the previous scope.
func (svc *Service) InvalidateUser(userID string) int {
	return svc.store.Invalidate(UserKeyMatcher(userID))
}

// InvalidateInstitute drops every cached entry scoped to the given institute.
func (svc *Service) InvalidateInstitute(instituteID string) int {
	return svc.store.Invalidate(InstituteKeyMatcher(instituteID))
}

// ClearPending forgets all in-flight registrations without waiting for them.
// Their eventual completions are sequence-stale and cannot write to the store.
func (svc *Service) ClearPending() {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for key := range svc.pending {
		svc.group.Forget(key)
		svc.seq[key]++
		delete(svc.pending, key)
	}
}

// Reset empties the store and drops all pending registrations; the two must
// happen together on logout so no in-flight response resolves into a freshly
// cleared session.
func (svc *Service) Reset() {
	svc.ClearPending()
	svc.store.ClearAll()
}

func (svc *Service) Stats() Stats {
	return Stats{
		Hits:          atomic.LoadUint64(&svc.hits),
		Misses:        atomic.LoadUint64(&svc.misses),
		StaleServed:   atomic.LoadUint64(&svc.stale),
		UpstreamCalls: atomic.LoadUint64(&svc.calls),
		Entries:       svc.store.Len(),
	}
}

func (svc *Service) inFlight(key string) bool {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	_, ok := svc.pending[key]
	return ok
}

func (svc *Service) nextSeq(key string) uint64 {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.seq[key]++
	return svc.seq[key]
}

func (svc *Service) currentSeq(key string) uint64 {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	return svc.seq[key]
}

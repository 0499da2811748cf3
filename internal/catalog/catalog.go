package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/scholarship-directory/internal/catalog/fallback"
	"github.com/samvad-hq/scholarship-directory/internal/domain"
	"github.com/samvad-hq/scholarship-directory/internal/logger"
	"github.com/samvad-hq/scholarship-directory/internal/normalize"
	"github.com/samvad-hq/scholarship-directory/pkg/sources"
)

// State is the lifecycle stage of the current record set.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateDegraded State = "degraded"
)

// Snapshot is one immutable view of the record set. A new snapshot replaces
// the previous one wholesale.
type Snapshot struct {
	Listings   []domain.Listing `json:"-"`
	State      State            `json:"state"`
	Diagnostic string           `json:"diagnostic,omitempty"`
	SourceID   string           `json:"source_id"`
	Generation uint64           `json:"generation"`
	LoadedAt   time.Time        `json:"loaded_at"`
}

// Count returns the number of listings in the snapshot.
func (s *Snapshot) Count() int {
	if s == nil {
		return 0
	}
	return len(s.Listings)
}

// Result reports the outcome of one Load call.
type Result struct {
	Snapshot *Snapshot
	// Committed is false when a newer load started before this one finished
	// or the load was cancelled; the snapshot was then discarded.
	Committed bool
}

// FallbackFunc supplies the bundled dataset.
type FallbackFunc func() []domain.Listing

// Catalog owns the current snapshot and loads new ones from sources.
type Catalog struct {
	registry sources.FetcherRegistry
	fallback FallbackFunc
	log      logger.Logger
	now      func() time.Time

	generation atomic.Uint64
	current    atomic.Pointer[Snapshot]
	// settled is the last committed snapshot that was not a loading
	// placeholder; cancelled loads restore from it.
	settled atomic.Pointer[Snapshot]
}

// Option customizes a Catalog.
type Option func(*Catalog)

// WithFallback replaces the bundled dataset.
func WithFallback(fn FallbackFunc) Option {
	return func(c *Catalog) {
		if fn != nil {
			c.fallback = fn
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// New builds a catalog that starts idle with the fallback dataset visible.
func New(reg sources.FetcherRegistry, log logger.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		registry: reg,
		fallback: fallback.Listings,
		log:      logger.Ensure(log),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	initial := &Snapshot{
		Listings: c.fallback(),
		State:    StateIdle,
		SourceID: fallback.SourceID,
		LoadedAt: c.now().UTC(),
	}
	c.current.Store(initial)
	c.settled.Store(initial)
	return c
}

// Snapshot returns the current record set. Callers must not modify it.
func (c *Catalog) Snapshot() *Snapshot {
	return c.current.Load()
}

// Load fetches src and swaps in the result. A nil src means no live source is
// configured and the fallback dataset is served as ready. Failures never
// escape: they yield a degraded snapshot over the fallback dataset with a
// diagnostic. Only the most recently started load that was not cancelled may
// commit.
func (c *Catalog) Load(ctx context.Context, src *sources.Source) Result {
	gen := c.generation.Add(1)

	if src == nil {
		snap := &Snapshot{
			Listings:   c.fallback(),
			State:      StateReady,
			SourceID:   fallback.SourceID,
			Generation: gen,
			LoadedAt:   c.now().UTC(),
		}
		return Result{Snapshot: snap, Committed: c.commit(gen, snap)}
	}

	prev := c.settled.Load()
	c.commit(gen, &Snapshot{
		Listings:   prev.Listings,
		State:      StateLoading,
		Diagnostic: prev.Diagnostic,
		SourceID:   prev.SourceID,
		Generation: gen,
		LoadedAt:   prev.LoadedAt,
	})

	start := c.now()
	listings, err := c.fetch(ctx, *src)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		c.log.WarnObj("catalog load cancelled", "catalog_load", map[string]any{
			"source_id":  src.ID,
			"generation": gen,
		})
		restored := c.restore(gen)
		return Result{Snapshot: restored}
	}

	snap := &Snapshot{
		Listings:   listings,
		State:      StateReady,
		SourceID:   src.ID,
		Generation: gen,
		LoadedAt:   c.now().UTC(),
	}
	if err != nil {
		snap.Listings = c.fallback()
		snap.State = StateDegraded
		snap.SourceID = fallback.SourceID
		snap.Diagnostic = fmt.Sprintf("Failed to load scholarships from %s: %v. Using local data.", src.Label(), err)
		c.log.ErrorObj("catalog load failed; serving fallback", "catalog_load", map[string]any{
			"source_id":  src.ID,
			"source":     src.Label(),
			"generation": gen,
			"error":      err.Error(),
		})
	}

	committed := c.commit(gen, snap)
	fields := map[string]any{
		"source_id":  src.ID,
		"state":      snap.State,
		"listings":   len(snap.Listings),
		"generation": gen,
		"elapsed_ms": c.now().Sub(start).Milliseconds(),
	}
	if committed {
		c.log.InfoObj("catalog load completed", "catalog_load", fields)
	} else {
		c.log.WarnObj("catalog load superseded; result discarded", "catalog_load", fields)
	}
	return Result{Snapshot: snap, Committed: committed}
}

func (c *Catalog) fetch(ctx context.Context, src sources.Source) ([]domain.Listing, error) {
	if c.registry == nil {
		return nil, errors.New("no fetcher registry configured")
	}
	fetcher, err := c.registry.FetcherFor(src)
	if err != nil {
		return nil, err
	}
	listings, err := fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, sources.ErrNoListings
	}
	return normalize.UniqueIDs(listings), nil
}

// commit stores snap if gen is still the latest initiated load.
func (c *Catalog) commit(gen uint64, snap *Snapshot) bool {
	for {
		if c.generation.Load() != gen {
			return false
		}
		cur := c.current.Load()
		if cur != nil && cur.Generation > gen {
			return false
		}
		if c.current.CompareAndSwap(cur, snap) {
			if snap.State != StateLoading {
				c.settled.Store(snap)
			}
			return true
		}
	}
}

// restore puts the last settled snapshot back after load gen was aborted and
// withdraws gen, so a load started before it can still commit. Loading
// placeholders are never restored.
func (c *Catalog) restore(gen uint64) *Snapshot {
	prev := c.settled.Load()
	if c.commit(gen, prev) {
		c.generation.CompareAndSwap(gen, gen-1)
	}
	return prev
}

package promo

import (
	"context"
	"sync"
	"time"

	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// Source fetches promotion definitions from the remote system of record.
type Source interface {
	FetchCombos(ctx context.Context) ([]Combo, error)
	FetchSingleBogos(ctx context.Context) ([]SingleBogo, error)
	FetchMultiBogos(ctx context.Context) ([]MultiBogo, error)
}

// SnapshotStore persists the last good combo set locally so a sale session can
// start while the remote store is unreachable.
type SnapshotStore interface {
	SaveCombos(ctx context.Context, combos []Combo) error
	LoadCombos(ctx context.Context) ([]Combo, error)
}

// Catalog holds the promotion sets for the lifetime of a sale session. Load is
// called once per session; Get is consulted synchronously afterwards.
type Catalog struct {
	mu       sync.RWMutex
	set      Set
	loadedAt time.Time

	source    Source
	snapshots SnapshotStore
	logg      *logger.Logger
	now       func() time.Time
}

// NewCatalog builds an empty catalog; call Load before relying on Get.
func NewCatalog(source Source, snapshots SnapshotStore, logg *logger.Logger) *Catalog {
	return &Catalog{
		source:    source,
		snapshots: snapshots,
		logg:      logg,
		now:       time.Now,
	}
}

// Load refreshes all three promotion sets. It never returns an error: combo
// fetch failures fall back to the local snapshot, and BOGO failures degrade to
// empty sets so checkout is never blocked by promotions.
func (c *Catalog) Load(ctx context.Context) {
	now := c.now()
	set := Set{}

	// Without a remote source the terminal boots from the snapshot alone.
	if c.source == nil {
		set.Combos = filterCombos(c.combosFromSnapshot(ctx), now)
		c.mu.Lock()
		c.set = set
		c.loadedAt = now
		c.mu.Unlock()
		return
	}

	combos, err := c.source.FetchCombos(ctx)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "combo fetch failed, trying local snapshot")
		combos = c.combosFromSnapshot(ctx)
	} else if c.snapshots != nil {
		if snapErr := c.snapshots.SaveCombos(ctx, combos); snapErr != nil {
			c.logg.Warn(c.logg.WithField(ctx, "error", snapErr.Error()), "combo snapshot write failed")
		}
	}
	set.Combos = filterCombos(combos, now)

	singles, err := c.source.FetchSingleBogos(ctx)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "bogo fetch failed, continuing without offers")
		singles = nil
	}
	set.SingleBogos = filterSingleBogos(singles, now)

	multis, err := c.source.FetchMultiBogos(ctx)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "multi bogo fetch failed, continuing without offers")
		multis = nil
	}
	set.MultiBogos = filterMultiBogos(multis, now)

	c.mu.Lock()
	c.set = set
	c.loadedAt = now
	c.mu.Unlock()

	c.logg.Info(c.logg.WithFields(ctx, map[string]any{
		"combos":       len(set.Combos),
		"single_bogos": len(set.SingleBogos),
		"multi_bogos":  len(set.MultiBogos),
	}), "promotion catalog loaded")
}

// Get returns the last loaded view synchronously.
func (c *Catalog) Get() Set {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.set
}

// LoadedAt reports when the catalog was last refreshed.
func (c *Catalog) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadedAt
}

func (c *Catalog) combosFromSnapshot(ctx context.Context) []Combo {
	if c.snapshots == nil {
		return nil
	}
	combos, err := c.snapshots.LoadCombos(ctx)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "combo snapshot read failed")
		return nil
	}
	return combos
}

func filterCombos(in []Combo, now time.Time) []Combo {
	out := make([]Combo, 0, len(in))
	for _, combo := range in {
		if Active(combo.StartsAt, combo.EndsAt, now) && len(combo.Items) > 0 {
			out = append(out, combo)
		}
	}
	return out
}

func filterSingleBogos(in []SingleBogo, now time.Time) []SingleBogo {
	out := make([]SingleBogo, 0, len(in))
	for _, offer := range in {
		if Active(offer.StartsAt, offer.EndsAt, now) && offer.BuyQuantity > 0 && offer.GetQuantity > 0 {
			out = append(out, offer)
		}
	}
	return out
}

func filterMultiBogos(in []MultiBogo, now time.Time) []MultiBogo {
	out := make([]MultiBogo, 0, len(in))
	for _, offer := range in {
		if Active(offer.StartsAt, offer.EndsAt, now) && len(offer.Items) > 0 {
			out = append(out, offer)
		}
	}
	return out
}

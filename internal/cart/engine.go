package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/internal/promo"
	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// PromotionView supplies the currently loaded promotion set. *promo.Catalog
// satisfies it.
type PromotionView interface {
	Get() promo.Set
}

// UsageRecorder persists global BOGO application counters. Failures are
// logged, never surfaced to the cashier.
type UsageRecorder interface {
	IncrementUsage(ctx context.Context, offerID uuid.UUID, times int) error
}

// Engine holds the active sale for one terminal and keeps its promotion-derived
// lines consistent. Mutations return immediately; recomputation runs after a
// short quiet period so barcode-scanner bursts coalesce into one pass.
type Engine struct {
	mu   sync.Mutex
	cond *sync.Cond

	lines []Line
	// gen increments on every mutation; a recompute result is discarded when
	// the cart moved while it ran. appliedGen is the gen the current lines
	// reflect.
	gen        uint64
	appliedGen uint64

	timer       *time.Timer
	recomputing bool
	// rearm marks a timer that fired while a pass was in flight.
	rearm bool

	promos   PromotionView
	resolver ProductResolver
	usage    UsageRecorder
	logg     *logger.Logger

	addDelay  time.Duration
	editDelay time.Duration
}

func NewEngine(cfg config.CartConfig, promos PromotionView, resolver ProductResolver, usage UsageRecorder, logg *logger.Logger) *Engine {
	e := &Engine{
		promos:    promos,
		resolver:  resolver,
		usage:     usage,
		logg:      logg,
		addDelay:  cfg.AddDebounce,
		editDelay: cfg.EditDebounce,
	}
	e.cond = sync.NewCond(&e.mu)
	return e
}

// AddLine puts a regular line in the cart. Scanning a product already present
// increases that line's quantity instead of duplicating it.
func (e *Engine) AddLine(line Line) {
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.lines {
		if e.lines[i].IsRegular() && e.lines[i].ID == line.ID {
			e.lines[i].Quantity += line.Quantity
			e.bump(e.addDelay)
			return
		}
	}
	e.lines = append(e.lines, line.clone())
	e.bump(e.addDelay)
}

// RemoveLine deletes the line with the given id, if present.
func (e *Engine) RemoveLine(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.lines[:0]
	removed := false
	for _, line := range e.lines {
		if line.ID == id {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	e.lines = kept
	if removed {
		e.bump(e.editDelay)
	}
}

// SetQuantity changes a line's quantity; zero or negative removes the line.
func (e *Engine) SetQuantity(id string, quantity int) {
	if quantity <= 0 {
		e.RemoveLine(id)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.lines {
		if e.lines[i].ID == id {
			if e.lines[i].Quantity != quantity {
				e.lines[i].Quantity = quantity
				e.bump(e.editDelay)
			}
			return
		}
	}
}

// SetManualPrice pins an operator-entered unit price on a line. The override
// survives recomputation until cleared with a nil price.
func (e *Engine) SetManualPrice(id string, price *float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.lines {
		if e.lines[i].ID == id {
			e.lines[i].CustomPrice = copyFloat(price)
			e.lines[i].ManualPriceChange = price != nil || e.lines[i].ItemDiscount != nil
			return
		}
	}
}

// SetManualDiscount sets a per-unit operator discount on a line.
func (e *Engine) SetManualDiscount(id string, discount *float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.lines {
		if e.lines[i].ID == id {
			e.lines[i].ItemDiscount = copyFloat(discount)
			e.lines[i].ManualPriceChange = discount != nil || e.lines[i].CustomPrice != nil
			return
		}
	}
}

// SetDisplayName renames a line for this sale only.
func (e *Engine) SetDisplayName(id string, name *string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.lines {
		if e.lines[i].ID == id {
			e.lines[i].DisplayName = copyString(name)
			return
		}
	}
}

// Clear empties the cart and cancels any pending recomputation.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = nil
	e.gen++
	e.appliedGen = e.gen
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.rearm = false
}

// LoadLines replaces the cart wholesale, used when resuming a parked sale or
// editing a previously settled order.
func (e *Engine) LoadLines(lines []Line) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = cloneLines(lines)
	e.bump(e.editDelay)
}

// Lines returns a snapshot of the cart in display order.
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneLines(e.lines)
}

// bump registers a mutation and (re)starts the quiet-period timer. Caller
// holds the mutex.
func (e *Engine) bump(delay time.Duration) {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(delay, e.onTimer)
}

func (e *Engine) onTimer() {
	e.mu.Lock()
	if e.recomputing {
		e.rearm = true
		e.mu.Unlock()
		return
	}
	e.runLocked(context.Background())
	e.mu.Unlock()
}

// runLocked executes one recompute pass and reports whether it failed. It
// enters holding the mutex, drops it around the pass, and returns holding it
// again.
func (e *Engine) runLocked(ctx context.Context) bool {
	e.recomputing = true
	snapshot := cloneLines(e.lines)
	gen := e.gen
	set := e.promos.Get()
	e.mu.Unlock()

	result, usages, err := recompute(ctx, snapshot, set, e.resolver)

	e.mu.Lock()
	e.recomputing = false
	switch {
	case err != nil:
		// The previous consistent cart stays; the next mutation retries.
		e.logg.Error(ctx, "promotion recompute failed, cart unchanged", err)
	case gen != e.gen:
		// Stale result; the mutation that moved gen rearmed the timer.
	default:
		e.lines = result
		e.appliedGen = gen
		if len(usages) > 0 && e.usage != nil {
			go e.recordUsages(usages)
		}
	}
	if e.rearm {
		e.rearm = false
		if e.timer != nil {
			e.timer.Stop()
		}
		e.timer = time.AfterFunc(e.editDelay, e.onTimer)
	}
	e.cond.Broadcast()
	return err != nil
}

// Flush runs any pending recomputation to completion and returns once the
// cart reflects every mutation made before the call. Settlement depends on
// this to never snapshot a half-updated cart. A failing pass ends the flush
// with the last consistent cart rather than blocking settlement.
func (e *Engine) Flush(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for {
		for e.recomputing {
			e.cond.Wait()
		}
		if e.gen == e.appliedGen {
			if e.timer != nil {
				e.timer.Stop()
				e.timer = nil
			}
			e.rearm = false
			return
		}
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		e.rearm = false
		if failed := e.runLocked(ctx); failed {
			return
		}
	}
}

func (e *Engine) recordUsages(usages []usage) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, u := range usages {
		if err := e.usage.IncrementUsage(ctx, u.offerID, u.times); err != nil {
			e.logg.Error(ctx, "bogo usage counter update failed", err)
		}
	}
}

package cart

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/internal/promo"
	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

type stubPromos struct {
	mu  sync.Mutex
	set promo.Set
}

func (s *stubPromos) Get() promo.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set
}

type recordingUsage struct {
	mu    sync.Mutex
	calls map[uuid.UUID]int
}

func (r *recordingUsage) IncrementUsage(_ context.Context, offerID uuid.UUID, times int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[uuid.UUID]int{}
	}
	r.calls[offerID] += times
	return nil
}

func newTestEngine(set promo.Set) *Engine {
	cfg := config.CartConfig{AddDebounce: 5 * time.Millisecond, EditDebounce: 2 * time.Millisecond}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewEngine(cfg, &stubPromos{set: set}, &stubResolver{}, &recordingUsage{}, logg)
}

func TestEngineMergesRepeatedScans(t *testing.T) {
	e := newTestEngine(promo.Set{})
	e.AddLine(regularLine(sodaID, "Soda", 1.00, 1))
	e.AddLine(regularLine(sodaID, "Soda", 1.00, 1))
	e.Flush(context.Background())

	lines := e.Lines()
	if len(lines) != 1 || lines[0].Quantity != 2 {
		t.Fatalf("expected merged line with quantity 2, got %+v", lines)
	}
}

func TestEngineFlushAppliesPendingRecompute(t *testing.T) {
	e := newTestEngine(promo.Set{Combos: []promo.Combo{sodaCombo()}})
	for i := 0; i < 3; i++ {
		e.AddLine(regularLine(sodaID, "Soda", 1.00, 1))
	}
	// Flush before the debounce window elapses; the combo must still form.
	e.Flush(context.Background())

	lines := e.Lines()
	if len(lines) != 1 || !lines[0].IsCombo {
		t.Fatalf("expected combo after flush, got %+v", lines)
	}
}

func TestEngineDebounceCoalescesBursts(t *testing.T) {
	e := newTestEngine(promo.Set{Combos: []promo.Combo{sodaCombo()}})
	for i := 0; i < 6; i++ {
		e.AddLine(regularLine(sodaID, "Soda", 1.00, 1))
	}
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		lines := e.Lines()
		if len(lines) == 2 && lines[0].IsCombo && lines[1].IsCombo {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("recompute never settled: %+v", e.Lines())
}

func TestEngineSetQuantityZeroRemoves(t *testing.T) {
	e := newTestEngine(promo.Set{})
	e.AddLine(regularLine(sodaID, "Soda", 1.00, 2))
	e.SetQuantity(sodaID.String(), 0)
	e.Flush(context.Background())
	if lines := e.Lines(); len(lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
}

func TestEngineClearCancelsPendingWork(t *testing.T) {
	e := newTestEngine(promo.Set{Combos: []promo.Combo{sodaCombo()}})
	for i := 0; i < 3; i++ {
		e.AddLine(regularLine(sodaID, "Soda", 1.00, 1))
	}
	e.Clear()
	time.Sleep(20 * time.Millisecond)
	if lines := e.Lines(); len(lines) != 0 {
		t.Fatalf("expected cleared cart to stay empty, got %+v", lines)
	}
}

func TestEngineManualOverridesSurviveRecompute(t *testing.T) {
	e := newTestEngine(promo.Set{Combos: []promo.Combo{sodaCombo()}})
	e.AddLine(regularLine(sodaID, "Soda", 1.00, 4))
	custom := 0.90
	e.SetManualPrice(sodaID.String(), &custom)
	e.Flush(context.Background())

	lines := e.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected remainder plus combo, got %+v", lines)
	}
	if lines[0].CustomPrice == nil || *lines[0].CustomPrice != custom {
		t.Fatalf("manual price lost across recompute: %+v", lines[0])
	}
}

func TestEngineRecordsBogoUsage(t *testing.T) {
	start, end := window()
	set := promo.Set{SingleBogos: []promo.SingleBogo{{
		ID:          offerID,
		Buy:         promo.ProductRef{ProductID: sodaID},
		BuyQuantity: 2,
		Get:         promo.ProductRef{ProductID: sodaID},
		GetQuantity: 1,
		StartsAt:    start,
		EndsAt:      end,
	}}}
	usage := &recordingUsage{}
	cfg := config.CartConfig{AddDebounce: 5 * time.Millisecond, EditDebounce: 2 * time.Millisecond}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	e := NewEngine(cfg, &stubPromos{set: set}, &stubResolver{}, usage, logg)

	e.AddLine(regularLine(sodaID, "Soda", 1.00, 2))
	e.Flush(context.Background())

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		usage.mu.Lock()
		times := usage.calls[offerID]
		usage.mu.Unlock()
		if times == 1 {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("usage counter never recorded")
}

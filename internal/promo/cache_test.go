package promo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/pkg/logger"
)

type stubSource struct {
	combos     []Combo
	singles    []SingleBogo
	multis     []MultiBogo
	comboErr   error
	singlesErr error
	multisErr  error
}

func (s *stubSource) FetchCombos(ctx context.Context) ([]Combo, error) {
	return s.combos, s.comboErr
}
func (s *stubSource) FetchSingleBogos(ctx context.Context) ([]SingleBogo, error) {
	return s.singles, s.singlesErr
}
func (s *stubSource) FetchMultiBogos(ctx context.Context) ([]MultiBogo, error) {
	return s.multis, s.multisErr
}

type memorySnapshots struct {
	combos  []Combo
	saveErr error
	loadErr error
	saved   int
}

func (m *memorySnapshots) SaveCombos(ctx context.Context, combos []Combo) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.combos = combos
	m.saved++
	return nil
}

func (m *memorySnapshots) LoadCombos(ctx context.Context) ([]Combo, error) {
	return m.combos, m.loadErr
}

func testCombo(name string, windowDelta time.Duration) Combo {
	now := time.Now()
	return Combo{
		ID:       uuid.New(),
		Name:     name,
		Price:    2.50,
		Items:    []ComboItem{{Product: ProductRef{ProductID: uuid.New()}, Quantity: 3}},
		StartsAt: now.Add(-time.Hour + windowDelta),
		EndsAt:   now.Add(time.Hour + windowDelta),
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func TestCatalogLoadFiltersWindows(t *testing.T) {
	t.Parallel()

	active := testCombo("soda-bundle", 0)
	expired := testCombo("stale", -3*time.Hour)
	source := &stubSource{combos: []Combo{active, expired}}

	catalog := NewCatalog(source, nil, testLogger())
	catalog.Load(context.Background())

	set := catalog.Get()
	if len(set.Combos) != 1 || set.Combos[0].ID != active.ID {
		t.Fatalf("expected only the active combo, got %d", len(set.Combos))
	}
}

func TestCatalogLoadFallsBackToSnapshot(t *testing.T) {
	t.Parallel()

	cached := testCombo("cached", 0)
	snaps := &memorySnapshots{combos: []Combo{cached}}
	source := &stubSource{comboErr: errors.New("network down")}

	catalog := NewCatalog(source, snaps, testLogger())
	catalog.Load(context.Background())

	set := catalog.Get()
	if len(set.Combos) != 1 || set.Combos[0].ID != cached.ID {
		t.Fatalf("expected snapshot combo, got %d", len(set.Combos))
	}
}

func TestCatalogLoadSavesSnapshotOnSuccess(t *testing.T) {
	t.Parallel()

	snaps := &memorySnapshots{}
	source := &stubSource{combos: []Combo{testCombo("fresh", 0)}}

	catalog := NewCatalog(source, snaps, testLogger())
	catalog.Load(context.Background())

	if snaps.saved != 1 {
		t.Fatalf("expected snapshot write, got %d", snaps.saved)
	}
}

func TestCatalogBogoFailuresDegradeToEmpty(t *testing.T) {
	t.Parallel()

	source := &stubSource{
		combos:     []Combo{testCombo("combo", 0)},
		singlesErr: errors.New("timeout"),
		multisErr:  errors.New("timeout"),
	}

	catalog := NewCatalog(source, nil, testLogger())
	catalog.Load(context.Background())

	set := catalog.Get()
	if len(set.SingleBogos) != 0 || len(set.MultiBogos) != 0 {
		t.Fatal("expected BOGO sets to degrade to empty")
	}
	if len(set.Combos) != 1 {
		t.Fatal("combo load should be unaffected by BOGO failures")
	}
}

func TestBundleSizeIsPerDefinition(t *testing.T) {
	t.Parallel()

	combo := Combo{Items: []ComboItem{
		{Product: ProductRef{ProductID: uuid.New()}, Quantity: 2},
		{Product: ProductRef{ProductID: uuid.New()}, Quantity: 2},
	}}
	if got := combo.BundleSize(); got != 4 {
		t.Fatalf("expected bundle size 4, got %d", got)
	}
}

func TestRemainingGlobalUses(t *testing.T) {
	t.Parallel()

	uncapped := SingleBogo{}
	if got := uncapped.RemainingGlobalUses(); got >= 0 {
		t.Fatalf("expected negative for uncapped, got %d", got)
	}

	cap := 5
	offer := SingleBogo{MaxTotalUses: &cap, CurrentUses: 7}
	if got := offer.RemainingGlobalUses(); got != 0 {
		t.Fatalf("expected clamped zero, got %d", got)
	}
}

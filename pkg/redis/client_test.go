package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/martinortega/abarrote-pos/pkg/config"
)

type fakeStore struct {
	lastIncrKey string
}

func (f *fakeStore) Ping(ctx context.Context) *redis.StatusCmd { return redis.NewStatusCmd(ctx) }

func (f *fakeStore) Set(ctx context.Context, _ string, _ any, _ time.Duration) *redis.StatusCmd {
	return redis.NewStatusCmd(ctx)
}

func (f *fakeStore) Get(ctx context.Context, _ string) *redis.StringCmd {
	return redis.NewStringCmd(ctx)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.lastIncrKey = key
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(7)
	return cmd
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	t.Parallel()

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address set")
	}
}

func TestOptionsFromConfigURLWins(t *testing.T) {
	t.Parallel()

	cfg := config.RedisConfig{
		URL:         "redis://localhost:6379/2",
		Address:     "ignored:6379",
		DialTimeout: 3 * time.Second,
	}
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr: %s", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("expected db 2, got %d", opts.DB)
	}
	if opts.DialTimeout != 3*time.Second {
		t.Fatalf("expected dial timeout from config, got %v", opts.DialTimeout)
	}
}

func TestSnapshotKeyNamespacing(t *testing.T) {
	t.Parallel()

	c := &Client{}
	if got := c.SnapshotKey("combos"); got != "abpos:snapshot:combos" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestNextFolioCountsPerDay(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	c := &Client{store: store}
	n, err := c.NextFolio(context.Background(), "2026-08-30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected counter value 7, got %d", n)
	}
	if store.lastIncrKey != "abpos:counter:folio:2026-08-30" {
		t.Fatalf("unexpected key: %s", store.lastIncrKey)
	}
}

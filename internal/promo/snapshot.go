package promo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/martinortega/abarrote-pos/pkg/redis"
)

const snapshotKind = "combos"

// RedisSnapshots stores the last good combo set in Redis so the till can open
// a session while disconnected from the system of record.
type RedisSnapshots struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshots(client *redis.Client, ttl time.Duration) *RedisSnapshots {
	return &RedisSnapshots{client: client, ttl: ttl}
}

func (s *RedisSnapshots) SaveCombos(ctx context.Context, combos []Combo) error {
	raw, err := json.Marshal(combos)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.client.SnapshotKey(snapshotKind), string(raw), s.ttl)
}

func (s *RedisSnapshots) LoadCombos(ctx context.Context) ([]Combo, error) {
	raw, err := s.client.Get(ctx, s.client.SnapshotKey(snapshotKind))
	if err != nil {
		if redis.IsMiss(err) {
			return nil, nil
		}
		return nil, err
	}
	var combos []Combo
	if err := json.Unmarshal([]byte(raw), &combos); err != nil {
		return nil, err
	}
	return combos, nil
}

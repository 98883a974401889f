package syncd

import (
	"context"
	"time"

	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// Pinger checks whether the remote system of record answers. *db.Client
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober watches remote reachability and signals offline-to-online
// transitions so queued sales drain as soon as connectivity returns instead
// of waiting out the sync interval.
type Prober struct {
	pinger   Pinger
	interval time.Duration
	logg     *logger.Logger

	online   chan struct{}
	wasUp    bool
	hasState bool
}

func NewProber(pinger Pinger, interval time.Duration, logg *logger.Logger) *Prober {
	return &Prober{
		pinger:   pinger,
		interval: interval,
		logg:     logg,
		online:   make(chan struct{}, 1),
	}
}

// Online delivers one signal per offline-to-online transition. The channel
// holds at most one pending signal; a drain already waiting absorbs repeats.
func (p *Prober) Online() <-chan struct{} {
	return p.online
}

// Run probes until the context ends.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

func (p *Prober) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, p.interval)
	err := p.pinger.Ping(probeCtx)
	cancel()

	up := err == nil
	switch {
	case up && p.hasState && !p.wasUp:
		p.logg.Info(ctx, "remote store reachable again, draining queue")
		select {
		case p.online <- struct{}{}:
		default:
		}
	case !up && (!p.hasState || p.wasUp):
		p.logg.Warn(ctx, "remote store unreachable")
	}
	p.wasUp = up
	p.hasState = true
}

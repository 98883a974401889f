package syncd

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/db/models"
	"github.com/martinortega/abarrote-pos/pkg/logger"
	"github.com/martinortega/abarrote-pos/pkg/metrics"
)

// Trigger labels what started a drain, for logs and metrics.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerOnline   = "online"
	TriggerManual   = "manual"
)

// Uploader pushes one queued transaction to the remote system of record.
type Uploader interface {
	Upload(ctx context.Context, rec *models.PendingTransaction) error
}

// Queue is the local durability store the daemon drains.
type Queue interface {
	ListUnsynced(ctx context.Context, limit int) ([]models.PendingTransaction, error)
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, cause string, at time.Time) error
	Depth(ctx context.Context) (int, error)
}

// Report summarizes one drain pass.
type Report struct {
	Succeeded int
	Failed    int
}

// Daemon periodically pushes queued sales to the remote store. Exactly one
// drain runs at a time; overlapping triggers are dropped, not queued.
type Daemon struct {
	queue    Queue
	uploader Uploader
	prober   *Prober
	interval time.Duration
	batch    int
	met      *metrics.SyncMetrics
	logg     *logger.Logger

	draining atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

func NewDaemon(cfg config.SyncConfig, queue Queue, uploader Uploader, prober *Prober, met *metrics.SyncMetrics, logg *logger.Logger) *Daemon {
	return &Daemon{
		queue:    queue,
		uploader: uploader,
		prober:   prober,
		interval: cfg.Interval,
		batch:    100,
		met:      met,
		logg:     logg,
		done:     make(chan struct{}),
	}
}

// Start launches the drain loop: one immediate pass, then one per interval,
// plus one whenever the prober observes the remote store come back online.
func (d *Daemon) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	d.cancel = cancel

	var online <-chan struct{}
	if d.prober != nil {
		online = d.prober.Online()
		go d.prober.Run(ctx)
	}

	go func() {
		defer close(d.done)
		d.drain(ctx, TriggerStartup)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.drain(ctx, TriggerInterval)
			case <-online:
				d.drain(ctx, TriggerOnline)
			}
		}
	}()
}

// Stop halts the loop and waits for any in-flight drain to finish.
func (d *Daemon) Stop() {
	d.once.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		<-d.done
	})
}

// Drain runs one pass on demand, for an operator-initiated retry.
func (d *Daemon) Drain(ctx context.Context) Report {
	return d.drain(ctx, TriggerManual)
}

func (d *Daemon) drain(ctx context.Context, trigger string) Report {
	if !d.draining.CompareAndSwap(false, true) {
		return Report{}
	}
	defer d.draining.Store(false)

	started := time.Now()
	report, err := d.drainOnce(ctx)
	d.met.ObserveDrain(trigger, time.Since(started))
	d.met.AddSuccess(trigger, report.Succeeded)
	d.met.AddFailure(trigger, report.Failed)
	if depth, depthErr := d.queue.Depth(ctx); depthErr == nil {
		d.met.SetQueueDepth(depth)
	}

	ctx = d.logg.WithFields(ctx, map[string]any{
		"trigger":   trigger,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
	})
	switch {
	case err != nil:
		d.logg.Error(ctx, "sync drain finished with errors", err)
	case report.Succeeded > 0 || report.Failed > 0:
		d.logg.Info(ctx, "sync drain finished")
	}
	return report
}

// drainOnce uploads every queued record, isolating failures so one poisoned
// record cannot block the rest of the queue.
func (d *Daemon) drainOnce(ctx context.Context) (Report, error) {
	var report Report
	var errs error

	if d.uploader == nil {
		return report, nil
	}

	recs, err := d.queue.ListUnsynced(ctx, d.batch)
	if err != nil {
		return report, err
	}
	for i := range recs {
		rec := recs[i]
		if ctx.Err() != nil {
			return report, multierr.Append(errs, ctx.Err())
		}
		now := time.Now().UTC()
		if err := d.uploader.Upload(ctx, &rec); err != nil {
			report.Failed++
			errs = multierr.Append(errs, err)
			if markErr := d.queue.MarkFailed(ctx, rec.ID, err.Error(), now); markErr != nil {
				errs = multierr.Append(errs, markErr)
			}
			continue
		}
		if err := d.queue.MarkSynced(ctx, rec.ID, now); err != nil {
			// The remote write landed; a failed flag flip only means the
			// record retries through the idempotent upload path.
			report.Failed++
			errs = multierr.Append(errs, err)
			continue
		}
		report.Succeeded++
	}
	return report, errs
}

package syncd

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/db/models"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
	"github.com/martinortega/abarrote-pos/pkg/logger"
	"github.com/martinortega/abarrote-pos/pkg/metrics"
)

type memQueue struct {
	mu       sync.Mutex
	recs     map[uuid.UUID]*models.PendingTransaction
	failures map[uuid.UUID]int
}

func newMemQueue(recs ...*models.PendingTransaction) *memQueue {
	q := &memQueue{recs: map[uuid.UUID]*models.PendingTransaction{}, failures: map[uuid.UUID]int{}}
	for _, rec := range recs {
		q.recs[rec.ID] = rec
	}
	return q
}

func (q *memQueue) ListUnsynced(context.Context, int) ([]models.PendingTransaction, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []models.PendingTransaction
	for _, rec := range q.recs {
		if !rec.Synced {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (q *memQueue) MarkSynced(_ context.Context, id uuid.UUID, _ time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recs[id].Synced = true
	return nil
}

func (q *memQueue) MarkFailed(_ context.Context, id uuid.UUID, _ string, _ time.Time) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failures[id]++
	return nil
}

func (q *memQueue) Depth(context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	depth := 0
	for _, rec := range q.recs {
		if !rec.Synced {
			depth++
		}
	}
	return depth, nil
}

type stubUploader struct {
	mu     sync.Mutex
	failID uuid.UUID
	count  int
}

func (u *stubUploader) Upload(_ context.Context, rec *models.PendingTransaction) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.count++
	if rec.ID == u.failID {
		return pkgerrors.New(pkgerrors.CodeDependency, "connection refused")
	}
	return nil
}

func queuedRec() *models.PendingTransaction {
	return &models.PendingTransaction{ID: uuid.New(), StoreID: "s", CashierID: "c", Timestamp: time.Now()}
}

func newTestDaemon(queue Queue, uploader Uploader) *Daemon {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := config.SyncConfig{Interval: time.Hour, ProbeInterval: time.Hour}
	return NewDaemon(cfg, queue, uploader, nil, metrics.NewSyncMetrics(nil), logg)
}

func TestDrainMarksUploadedRecords(t *testing.T) {
	first, second := queuedRec(), queuedRec()
	queue := newMemQueue(first, second)
	daemon := newTestDaemon(queue, &stubUploader{})

	report := daemon.Drain(context.Background())
	if report.Succeeded != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	depth, _ := queue.Depth(context.Background())
	if depth != 0 {
		t.Fatalf("expected empty queue, depth=%d", depth)
	}
}

func TestDrainIsolatesPoisonedRecord(t *testing.T) {
	good, bad := queuedRec(), queuedRec()
	queue := newMemQueue(good, bad)
	daemon := newTestDaemon(queue, &stubUploader{failID: bad.ID})

	report := daemon.Drain(context.Background())
	if report.Succeeded != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if queue.failures[bad.ID] != 1 {
		t.Fatalf("failed record must be marked, got %d", queue.failures[bad.ID])
	}
	if !queue.recs[good.ID].Synced {
		t.Fatal("good record must still sync")
	}
}

// downableRemote stands in for the system of record: it answers both the
// prober's Ping and the drain's Upload, and can be toggled unreachable.
type downableRemote struct {
	mu   sync.Mutex
	down bool
}

func (r *downableRemote) setDown(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down = down
}

func (r *downableRemote) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return pkgerrors.New(pkgerrors.CodeDependency, "connection refused")
	}
	return nil
}

func (r *downableRemote) Upload(context.Context, *models.PendingTransaction) error {
	return r.Ping(context.Background())
}

func TestOfflineBootDrainsAfterRemoteReturns(t *testing.T) {
	rec := queuedRec()
	queue := newMemQueue(rec)
	remote := &downableRemote{down: true}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	cfg := config.SyncConfig{Interval: 5 * time.Millisecond, ProbeInterval: 2 * time.Millisecond}
	prober := NewProber(remote, cfg.ProbeInterval, logg)
	daemon := NewDaemon(cfg, queue, remote, prober, metrics.NewSyncMetrics(nil), logg)

	daemon.Start(context.Background())
	defer daemon.Stop()

	// While the remote is down every cycle records a failed attempt; the
	// record must not sit idle waiting for a process restart.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		queue.mu.Lock()
		attempts := queue.failures[rec.ID]
		queue.mu.Unlock()
		if attempts > 0 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	queue.mu.Lock()
	attempts := queue.failures[rec.ID]
	queue.mu.Unlock()
	if attempts == 0 {
		t.Fatal("no sync attempt recorded while remote was down")
	}

	remote.setDown(false)

	deadline = time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		queue.mu.Lock()
		synced := queue.recs[rec.ID].Synced
		queue.mu.Unlock()
		if synced {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("record never synced after the remote came back")
}

func TestStartRunsImmediateDrain(t *testing.T) {
	rec := queuedRec()
	queue := newMemQueue(rec)
	daemon := newTestDaemon(queue, &stubUploader{})

	daemon.Start(context.Background())
	defer daemon.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if depth, _ := queue.Depth(context.Background()); depth == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("startup drain never ran")
}

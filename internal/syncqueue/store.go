package syncqueue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/martinortega/abarrote-pos/pkg/db"
	"github.com/martinortega/abarrote-pos/pkg/db/models"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
)

// Store is the local durability queue backed by SQLite. The database file is
// opened and migrated on first use, so a terminal that never goes offline
// never creates it.
type Store struct {
	path string

	mu sync.Mutex
	db *gorm.DB
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Open wires an already opened handle, used by tests and by processes sharing
// one connection.
func Open(handle *gorm.DB) (*Store, error) {
	if err := handle.AutoMigrate(&models.PendingTransaction{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "migrate local queue")
	}
	return &Store{db: handle}, nil
}

func (s *Store) handle() (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	handle, err := db.OpenLocal(s.path)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open local queue")
	}
	if err := handle.AutoMigrate(&models.PendingTransaction{}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "migrate local queue")
	}
	s.db = handle
	return s.db, nil
}

// Enqueue stores a settled sale awaiting remote confirmation. Re-enqueueing
// the same id is a no-op so retries after a crash cannot duplicate a sale.
func (s *Store) Enqueue(ctx context.Context, rec *models.PendingTransaction) error {
	handle, err := s.handle()
	if err != nil {
		return err
	}
	err = handle.WithContext(ctx).Create(rec).Error
	if err != nil && db.IsUniqueViolation(err, "pending_transactions.id") {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "enqueue pending transaction")
	}
	return nil
}

// ListUnsynced returns queued records oldest first.
func (s *Store) ListUnsynced(ctx context.Context, limit int) ([]models.PendingTransaction, error) {
	handle, err := s.handle()
	if err != nil {
		return nil, err
	}
	query := handle.WithContext(ctx).
		Where("synced = ?", false).
		Order("timestamp asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var recs []models.PendingTransaction
	if err := query.Find(&recs).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pending transactions")
	}
	return recs, nil
}

// MarkSynced flips the record to confirmed. Rows are kept for the audit
// trail, never deleted.
func (s *Store) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	handle, err := s.handle()
	if err != nil {
		return err
	}
	err = handle.WithContext(ctx).
		Model(&models.PendingTransaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"synced":            true,
			"sync_error":        nil,
			"last_sync_attempt": at,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark transaction synced")
	}
	return nil
}

// MarkFailed records an attempt that did not reach the remote store.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, cause string, at time.Time) error {
	handle, err := s.handle()
	if err != nil {
		return err
	}
	err = handle.WithContext(ctx).
		Model(&models.PendingTransaction{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"sync_error":        cause,
			"sync_attempts":     gorm.Expr("sync_attempts + 1"),
			"last_sync_attempt": at,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark transaction failed")
	}
	return nil
}

// Depth counts records still awaiting confirmation.
func (s *Store) Depth(ctx context.Context) (int, error) {
	handle, err := s.handle()
	if err != nil {
		return 0, err
	}
	var count int64
	err = handle.WithContext(ctx).
		Model(&models.PendingTransaction{}).
		Where("synced = ?", false).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending transactions")
	}
	return int(count), nil
}

package syncqueue

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/martinortega/abarrote-pos/pkg/db"
	"github.com/martinortega/abarrote-pos/pkg/db/models"
	dbtypes "github.com/martinortega/abarrote-pos/pkg/db/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	handle, err := db.OpenLocal("file::memory:?cache=shared")
	require.NoError(t, err)
	store, err := Open(handle)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, handle.Exec("DELETE FROM pending_transactions").Error)
	})
	return store
}

func pendingRecord(at time.Time) *models.PendingTransaction {
	return &models.PendingTransaction{
		ID:            uuid.New(),
		StoreID:       "store-1",
		CashierID:     "cashier-1",
		Items:         dbtypes.SaleItems{{ID: "p1", Name: "Soda", Price: 2.50, Quantity: 1}},
		Subtotal:      2.50,
		Total:         2.50,
		PaymentMethod: "cash",
		Timestamp:     at,
	}
}

func TestEnqueueAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := pendingRecord(time.Now().Add(-time.Minute))
	newer := pendingRecord(time.Now())
	require.NoError(t, store.Enqueue(ctx, newer))
	require.NoError(t, store.Enqueue(ctx, older))

	recs, err := store.ListUnsynced(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, older.ID, recs[0].ID, "oldest record drains first")
	require.Len(t, recs[0].Items, 1)
	require.Equal(t, "Soda", recs[0].Items[0].Name)
}

func TestEnqueueSameIDIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := pendingRecord(time.Now())
	require.NoError(t, store.Enqueue(ctx, rec))
	require.NoError(t, store.Enqueue(ctx, rec))

	depth, err := store.Depth(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, depth)
}

func TestMarkSyncedKeepsRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := pendingRecord(time.Now())
	require.NoError(t, store.Enqueue(ctx, rec))
	require.NoError(t, store.MarkSynced(ctx, rec.ID, time.Now()))

	recs, err := store.ListUnsynced(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, recs)

	var count int64
	require.NoError(t, store.db.Model(&models.PendingTransaction{}).Count(&count).Error)
	require.EqualValues(t, 1, count, "confirmed rows are kept, not deleted")
}

func TestMarkFailedTracksAttempts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := pendingRecord(time.Now())
	require.NoError(t, store.Enqueue(ctx, rec))
	require.NoError(t, store.MarkFailed(ctx, rec.ID, "connection refused", time.Now()))
	require.NoError(t, store.MarkFailed(ctx, rec.ID, "connection refused", time.Now()))

	recs, err := store.ListUnsynced(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, 2, recs[0].SyncAttempts)
	require.NotNil(t, recs[0].SyncError)
	require.Equal(t, "connection refused", *recs[0].SyncError)
}

package settle

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/martinortega/abarrote-pos/pkg/db"
	"github.com/martinortega/abarrote-pos/pkg/db/models"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
)

// Repository writes settled sales to the remote system of record.
type Repository struct {
	client *db.Client
}

func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client}
}

// WriteSale inserts the sale and, when the sale converts an online order,
// marks that order paid in the same transaction. The insert is idempotent on
// the client-generated id so replays after a lost acknowledgment are no-ops.
func (r *Repository) WriteSale(ctx context.Context, sale *models.Sale, editing *Conversion) error {
	err := r.client.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(sale)
		if res.Error != nil {
			return res.Error
		}
		if editing == nil || res.RowsAffected == 0 {
			return nil
		}
		update := map[string]any{
			"status":  "paid",
			"paid_at": time.Now().UTC(),
		}
		if editing.PaymentMethod != "" {
			update["payment_method"] = editing.PaymentMethod
		}
		return tx.Model(&models.OnlineOrder{}).
			Where("id = ?", editing.OrderID).
			Updates(update).Error
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write sale")
	}
	return nil
}

// Upload pushes one queued transaction to the remote store. The sync daemon
// uses the same idempotent path as the online settlement write.
func (r *Repository) Upload(ctx context.Context, rec *models.PendingTransaction) error {
	sale := SaleFromPending(rec)
	var editing *Conversion
	if rec.EditingID != nil && rec.EditingKind != nil && *rec.EditingKind == EditingKindOnlineOrder {
		editing = &Conversion{OrderID: *rec.EditingID, PaymentMethod: rec.PaymentMethod}
	}
	return r.WriteSale(ctx, sale, editing)
}

// SaleFromPending maps a queued local record onto the remote row shape.
func SaleFromPending(rec *models.PendingTransaction) *models.Sale {
	return &models.Sale{
		ID:            rec.ID,
		StoreID:       rec.StoreID,
		CashierID:     rec.CashierID,
		CustomerID:    rec.CustomerID,
		Items:         rec.Items,
		Subtotal:      rec.Subtotal,
		Discount:      rec.Discount,
		Total:         rec.Total,
		PaymentMethod: rec.PaymentMethod,
		Notes:         rec.Notes,
		Timestamp:     rec.Timestamp,
	}
}

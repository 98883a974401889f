package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/martinortega/abarrote-pos/pkg/db/types"
)

// PendingTransaction is the durable local record of a completed sale awaiting
// confirmation by the remote system of record. The id is client-generated and
// stable across retries; rows are never deleted by normal operation.
type PendingTransaction struct {
	ID              uuid.UUID         `gorm:"column:id;type:text;primaryKey"`
	StoreID         string            `gorm:"column:store_id;not null"`
	CashierID       string            `gorm:"column:cashier_id;not null"`
	CustomerID      *string           `gorm:"column:customer_id"`
	Items           dbtypes.SaleItems `gorm:"column:items;type:text;not null"`
	Subtotal        float64           `gorm:"column:subtotal;not null"`
	Discount        float64           `gorm:"column:discount;not null"`
	Total           float64           `gorm:"column:total;not null"`
	PaymentMethod   string            `gorm:"column:payment_method;not null"`
	Notes           *string           `gorm:"column:notes"`
	Timestamp       time.Time         `gorm:"column:timestamp;not null"`
	EditingID       *uuid.UUID        `gorm:"column:editing_id;type:text"`
	EditingKind     *string           `gorm:"column:editing_kind"`
	Synced          bool              `gorm:"column:synced;not null;default:false"`
	SyncError       *string           `gorm:"column:sync_error"`
	SyncAttempts    int               `gorm:"column:sync_attempts;not null;default:0"`
	LastSyncAttempt *time.Time        `gorm:"column:last_sync_attempt"`
}

func (PendingTransaction) TableName() string { return "pending_transactions" }

package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/martinortega/abarrote-pos/pkg/db/types"
)

// Sale is the remote system-of-record row for a settled transaction. Inserts
// are idempotent on the client-generated id.
type Sale struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	StoreID       string            `gorm:"column:store_id;not null"`
	CashierID     string            `gorm:"column:cashier_id;not null"`
	CustomerID    *string           `gorm:"column:customer_id"`
	Items         dbtypes.SaleItems `gorm:"column:items;type:jsonb;not null"`
	Subtotal      float64           `gorm:"column:subtotal;not null"`
	Discount      float64           `gorm:"column:discount;not null"`
	Total         float64           `gorm:"column:total;not null"`
	PaymentMethod string            `gorm:"column:payment_method;not null"`
	Notes         *string           `gorm:"column:notes"`
	Timestamp     time.Time         `gorm:"column:timestamp;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (Sale) TableName() string { return "sales" }

// OnlineOrder is the remote order a sale may convert when a customer pays in
// store for an order placed online. Only the fields settlement touches.
type OnlineOrder struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Status        string    `gorm:"column:status;not null"`
	PaymentMethod *string   `gorm:"column:payment_method"`
	Total         float64   `gorm:"column:total;not null"`
	PaidAt        *time.Time `gorm:"column:paid_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (OnlineOrder) TableName() string { return "online_orders" }

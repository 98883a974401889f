package settle

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/internal/cart"
	"github.com/martinortega/abarrote-pos/internal/tax"
	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/db/models"
	dbtypes "github.com/martinortega/abarrote-pos/pkg/db/types"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// EditingKindOnlineOrder marks a settlement that converts a previously placed
// online order into a paid in-store sale.
const EditingKindOnlineOrder = "online_order"

// SyncStatus reports where the settled record landed.
type SyncStatus string

const (
	SyncStatusSynced  SyncStatus = "synced"
	SyncStatusPending SyncStatus = "pending"
)

// Conversion identifies the online order a settlement pays off.
type Conversion struct {
	OrderID       uuid.UUID
	PaymentMethod string
}

// Request carries the operator-supplied settlement inputs.
type Request struct {
	CashierID     string
	CustomerID    *string
	PaymentMethod string
	Notes         *string
	BillDiscount  float64
	EditingID     *uuid.UUID
	EditingKind   *string
}

// Receipt is the settled outcome handed back to the till. Folio is the day's
// sequential ticket number, absent when the counter store is down.
type Receipt struct {
	ID        uuid.UUID
	Folio     *int64
	Items     dbtypes.SaleItems
	Figures   Figures
	Status    SyncStatus
	SettledAt time.Time
}

// RemoteWriter is the online path to the system of record.
type RemoteWriter interface {
	WriteSale(ctx context.Context, sale *models.Sale, editing *Conversion) error
}

// Queue is the offline durability path.
type Queue interface {
	Enqueue(ctx context.Context, rec *models.PendingTransaction) error
}

// FolioCounter issues the sequential ticket number printed on receipts.
// *redis.Client satisfies it.
type FolioCounter interface {
	NextFolio(ctx context.Context, day string) (int64, error)
}

// Flusher forces any debounced promotion work to complete before the cart is
// snapshotted.
type Flusher interface {
	Flush(ctx context.Context)
	Lines() []cart.Line
	Clear()
}

// Service turns the active cart into a durable sale record.
type Service struct {
	engine       Flusher
	remote       RemoteWriter
	queue        Queue
	folio        FolioCounter
	taxFn        tax.Func
	store        config.StoreConfig
	writeTimeout time.Duration
	logg         *logger.Logger
	now          func() time.Time
	newID        func() uuid.UUID
}

func NewService(engine Flusher, remote RemoteWriter, queue Queue, folio FolioCounter, taxFn tax.Func, store config.StoreConfig, syncCfg config.SyncConfig, logg *logger.Logger) *Service {
	return &Service{
		engine:       engine,
		remote:       remote,
		queue:        queue,
		folio:        folio,
		taxFn:        taxFn,
		store:        store,
		writeTimeout: syncCfg.WriteTimeout,
		logg:         logg,
		now:          time.Now,
		newID:        uuid.New,
	}
}

// Settle finalizes the active sale. It flushes pending recomputation first so
// the persisted snapshot always reflects every registered mutation, then
// writes remotely, falling back to the local queue when the remote store is
// unreachable. Settlement never fails because the network is down.
func (s *Service) Settle(ctx context.Context, req Request) (*Receipt, error) {
	s.engine.Flush(ctx)
	lines := s.engine.Lines()

	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot settle an empty cart")
	}
	if req.CashierID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cashier id is required")
	}
	if req.PaymentMethod == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	if s.store.StoreID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no store selected")
	}

	figures := Calculate(lines, req.BillDiscount, s.taxFn)
	items := make(dbtypes.SaleItems, 0, len(lines))
	for _, line := range lines {
		items = append(items, line.Snapshot())
	}

	settledAt := s.now().UTC()
	rec := &models.PendingTransaction{
		ID:            s.newID(),
		StoreID:       s.store.StoreID,
		CashierID:     req.CashierID,
		CustomerID:    req.CustomerID,
		Items:         items,
		Subtotal:      figures.Subtotal,
		Discount:      figures.BillDiscount,
		Total:         figures.Total,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		Timestamp:     settledAt,
		EditingID:     req.EditingID,
		EditingKind:   req.EditingKind,
	}

	status := SyncStatusSynced
	if err := s.writeRemote(ctx, rec); err != nil {
		s.logg.Error(ctx, "remote settlement write failed, queueing locally", err)
		if qErr := s.queue.Enqueue(ctx, rec); qErr != nil {
			// Both paths failed; the cart stays intact so the operator can
			// retry.
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, qErr, "persist settled sale")
		}
		status = SyncStatusPending
	}

	s.engine.Clear()
	return &Receipt{
		ID:        rec.ID,
		Folio:     s.nextFolio(ctx, settledAt),
		Items:     items,
		Figures:   figures,
		Status:    status,
		SettledAt: settledAt,
	}, nil
}

// nextFolio stamps the day's sequential ticket number. The sale is already
// durable at this point, so a counter failure only leaves the receipt
// unnumbered.
func (s *Service) nextFolio(ctx context.Context, settledAt time.Time) *int64 {
	if s.folio == nil {
		return nil
	}
	n, err := s.folio.NextFolio(ctx, settledAt.Format("2006-01-02"))
	if err != nil {
		s.logg.Warn(ctx, "folio counter unavailable, receipt unnumbered")
		return nil
	}
	return &n
}

func (s *Service) writeRemote(parent context.Context, rec *models.PendingTransaction) error {
	if s.remote == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "remote store not configured")
	}
	ctx, cancel := context.WithTimeout(parent, s.writeTimeout)
	defer cancel()

	var editing *Conversion
	if rec.EditingID != nil && rec.EditingKind != nil && *rec.EditingKind == EditingKindOnlineOrder {
		editing = &Conversion{OrderID: *rec.EditingID, PaymentMethod: rec.PaymentMethod}
	}
	return s.remote.WriteSale(ctx, SaleFromPending(rec), editing)
}

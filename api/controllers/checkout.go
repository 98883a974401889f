package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/api/middleware"
	"github.com/martinortega/abarrote-pos/api/responses"
	"github.com/martinortega/abarrote-pos/api/validators"
	"github.com/martinortega/abarrote-pos/internal/settle"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// CheckoutController settles the active cart.
type CheckoutController struct {
	settler *settle.Service
	logg    *logger.Logger
}

func NewCheckoutController(settler *settle.Service, logg *logger.Logger) *CheckoutController {
	return &CheckoutController{settler: settler, logg: logg}
}

type checkoutRequest struct {
	PaymentMethod string  `json:"payment_method" validate:"required,oneof=cash card transfer"`
	CustomerID    *string `json:"customer_id,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	BillDiscount  float64 `json:"bill_discount" validate:"min=0"`
	EditingID     *string `json:"editing_id,omitempty" validate:"omitempty,uuid"`
	EditingKind   *string `json:"editing_kind,omitempty" validate:"omitempty,oneof=online_order"`
}

type checkoutResponse struct {
	ID            string  `json:"id"`
	Folio         *int64  `json:"folio,omitempty"`
	Subtotal      float64 `json:"subtotal"`
	BillDiscount  float64 `json:"bill_discount"`
	Tax           float64 `json:"tax"`
	TaxApplicable bool    `json:"tax_applicable"`
	Total         float64 `json:"total"`
	Status        string  `json:"status"`
	SettledAt     string  `json:"settled_at"`
}

func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	cashierID := middleware.CashierIDFromContext(r.Context())
	if cashierID == "" {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing operator identity"))
		return
	}

	settleReq := settle.Request{
		CashierID:     cashierID,
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		BillDiscount:  req.BillDiscount,
		EditingKind:   req.EditingKind,
	}
	if req.EditingID != nil {
		editingID, err := uuid.Parse(*req.EditingID)
		if err != nil {
			responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid editing id"))
			return
		}
		settleReq.EditingID = &editingID
	}

	receipt, err := c.settler.Settle(r.Context(), settleReq)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	ctx := c.logg.WithSaleID(r.Context(), receipt.ID.String())
	c.logg.Info(ctx, "sale settled")

	responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
		ID:            receipt.ID.String(),
		Folio:         receipt.Folio,
		Subtotal:      receipt.Figures.Subtotal,
		BillDiscount:  receipt.Figures.BillDiscount,
		Tax:           receipt.Figures.Tax,
		TaxApplicable: receipt.Figures.TaxApplicable,
		Total:         receipt.Figures.Total,
		Status:        string(receipt.Status),
		SettledAt:     receipt.SettledAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

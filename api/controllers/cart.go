package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/api/responses"
	"github.com/martinortega/abarrote-pos/api/validators"
	"github.com/martinortega/abarrote-pos/internal/cart"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// CartController exposes the live cart of this terminal.
type CartController struct {
	engine *cart.Engine
	logg   *logger.Logger
}

func NewCartController(engine *cart.Engine, logg *logger.Logger) *CartController {
	return &CartController{engine: engine, logg: logg}
}

type addLineRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	VariantID *string `json:"variant_id,omitempty" validate:"omitempty,uuid"`
	Name      string  `json:"name" validate:"required"`
	Price     float64 `json:"price" validate:"min=0"`
	Quantity  int     `json:"quantity" validate:"min=0"`
}

type lineView struct {
	ID                string   `json:"id"`
	ProductID         string   `json:"product_id"`
	Name              string   `json:"name"`
	DisplayName       *string  `json:"display_name,omitempty"`
	Price             float64  `json:"price"`
	OriginalPrice     *float64 `json:"original_price,omitempty"`
	Quantity          int      `json:"quantity"`
	ItemDiscount      *float64 `json:"item_discount,omitempty"`
	CustomPrice       *float64 `json:"custom_price,omitempty"`
	ManualPriceChange bool     `json:"manual_price_change"`
	IsCombo           bool     `json:"is_combo"`
	IsBogo            bool     `json:"is_bogo"`
	LineTotal         float64  `json:"line_total"`
}

func viewLines(lines []cart.Line) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, line := range lines {
		out = append(out, lineView{
			ID:                line.ID,
			ProductID:         line.ProductID.String(),
			Name:              line.Name,
			DisplayName:       line.DisplayName,
			Price:             line.Price,
			OriginalPrice:     line.OriginalPrice,
			Quantity:          line.Quantity,
			ItemDiscount:      line.ItemDiscount,
			CustomPrice:       line.CustomPrice,
			ManualPriceChange: line.ManualPriceChange,
			IsCombo:           line.IsCombo,
			IsBogo:            line.IsBogo,
			LineTotal:         line.LineTotal(),
		})
	}
	return out
}

// List returns the cart as currently displayed; a recompute may still be
// pending if the operator is mid-burst.
func (c *CartController) List(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]any{"lines": viewLines(c.engine.Lines())})
}

func (c *CartController) AddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		responses.WriteError(r.Context(), c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id"))
		return
	}

	lineID := productID.String()
	if req.VariantID != nil {
		lineID = *req.VariantID
	}
	c.engine.AddLine(cart.Line{
		ID:        lineID,
		ProductID: productID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
	})
	responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]any{"lines": viewLines(c.engine.Lines())})
}

func (c *CartController) RemoveLine(w http.ResponseWriter, r *http.Request) {
	c.engine.RemoveLine(chi.URLParam(r, "lineID"))
	responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]any{"lines": viewLines(c.engine.Lines())})
}

type updateLineRequest struct {
	Quantity     *int     `json:"quantity,omitempty" validate:"omitempty,min=0"`
	CustomPrice  *float64 `json:"custom_price,omitempty" validate:"omitempty,min=0"`
	ItemDiscount *float64 `json:"item_discount,omitempty" validate:"omitempty,min=0"`
	DisplayName  *string  `json:"display_name,omitempty"`
	ClearPrice   bool     `json:"clear_price,omitempty"`
	ClearName    bool     `json:"clear_name,omitempty"`
}

// UpdateLine applies any combination of quantity, manual price, manual
// discount, and display name changes to one line.
func (c *CartController) UpdateLine(w http.ResponseWriter, r *http.Request) {
	var req updateLineRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(r.Context(), c.logg, w, err)
		return
	}

	lineID := chi.URLParam(r, "lineID")
	if req.Quantity != nil {
		c.engine.SetQuantity(lineID, *req.Quantity)
	}
	if req.CustomPrice != nil || req.ClearPrice {
		c.engine.SetManualPrice(lineID, req.CustomPrice)
	}
	if req.ItemDiscount != nil {
		c.engine.SetManualDiscount(lineID, req.ItemDiscount)
	}
	if req.DisplayName != nil || req.ClearName {
		c.engine.SetDisplayName(lineID, req.DisplayName)
	}
	responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]any{"lines": viewLines(c.engine.Lines())})
}

func (c *CartController) Clear(w http.ResponseWriter, r *http.Request) {
	c.engine.Clear()
	responses.WriteSuccess(w, map[string]any{"lines": []lineView{}})
}

package promo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/google/uuid"
	"github.com/martinortega/abarrote-pos/pkg/db/models"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
)

// Repository reads promotion definitions from the remote store and advances
// BOGO usage counters.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FetchCombos loads every combo whose window overlaps now; declaration order
// of constituents follows the stored position.
func (r *Repository) FetchCombos(ctx context.Context) ([]Combo, error) {
	var rows []models.ComboPromotion
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("ends_at >= ?", time.Now()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch combos")
	}

	combos := make([]Combo, 0, len(rows))
	for _, row := range rows {
		combo := Combo{
			ID:       row.ID,
			Name:     row.Name,
			Price:    row.ComboPrice,
			StartsAt: row.StartsAt,
			EndsAt:   row.EndsAt,
		}
		for _, item := range row.Items {
			combo.Items = append(combo.Items, ComboItem{
				Product:  ProductRef{ProductID: item.ProductID, VariantID: item.VariantID},
				Quantity: item.Quantity,
			})
		}
		combos = append(combos, combo)
	}
	return combos, nil
}

func (r *Repository) FetchSingleBogos(ctx context.Context) ([]SingleBogo, error) {
	var rows []models.BogoOffer
	err := r.db.WithContext(ctx).
		Where("ends_at >= ?", time.Now()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch bogo offers")
	}

	offers := make([]SingleBogo, 0, len(rows))
	for _, row := range rows {
		offers = append(offers, SingleBogo{
			ID:              row.ID,
			Buy:             ProductRef{ProductID: row.BuyProductID, VariantID: row.BuyVariantID},
			BuyQuantity:     row.BuyQuantity,
			Get:             ProductRef{ProductID: row.GetProductID, VariantID: row.GetVariantID},
			GetQuantity:     row.GetQuantity,
			DiscountPercent: row.DiscountPercent,
			MaxPerSale:      row.MaxPerSale,
			MaxTotalUses:    row.MaxTotalUses,
			CurrentUses:     row.CurrentUses,
			StartsAt:        row.StartsAt,
			EndsAt:          row.EndsAt,
		})
	}
	return offers, nil
}

func (r *Repository) FetchMultiBogos(ctx context.Context) ([]MultiBogo, error) {
	var rows []models.MultiBogoOffer
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("ends_at >= ?", time.Now()).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch multi bogo offers")
	}

	offers := make([]MultiBogo, 0, len(rows))
	for _, row := range rows {
		offer := MultiBogo{
			ID:       row.ID,
			Name:     row.Name,
			StartsAt: row.StartsAt,
			EndsAt:   row.EndsAt,
		}
		for _, item := range row.Items {
			offer.Items = append(offer.Items, ProductRef{ProductID: item.ProductID, VariantID: item.VariantID})
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

// IncrementUsage advances a capped offer's usage counter with a conditional
// update so concurrent tills cannot push it past the cap.
func (r *Repository) IncrementUsage(ctx context.Context, offerID uuid.UUID, times int) error {
	if times <= 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.BogoOffer{}).
		Where("id = ? AND (max_total_uses IS NULL OR current_uses + ? <= max_total_uses)", offerID, times).
		UpdateColumn("current_uses", gorm.Expr("current_uses + ?", times))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "increment bogo usage")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "bogo usage cap reached")
	}
	return nil
}

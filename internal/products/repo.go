package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/martinortega/abarrote-pos/internal/promo"
	"github.com/martinortega/abarrote-pos/pkg/db/models"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
)

// Resolved is the slice of catalog data needed to materialize a cart line for
// a product that is not already in the cart.
type Resolved struct {
	LineID    string
	ProductID uuid.UUID
	Name      string
	Price     float64
}

// Repository reads the remote product catalog.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Resolve looks up the product (or variant) a promotion references.
func (r *Repository) Resolve(ctx context.Context, ref promo.ProductRef) (*Resolved, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if ref.VariantID != nil {
		query = query.Where("variant_id = ?", *ref.VariantID)
	} else {
		query = query.Where("id = ?", ref.ProductID)
	}

	var row models.Product
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "promotion product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
	}

	return &Resolved{
		LineID:    promo.ProductRef{ProductID: row.ID, VariantID: row.VariantID}.LineID(),
		ProductID: row.ID,
		Name:      row.Name,
		Price:     row.Price,
	}, nil
}

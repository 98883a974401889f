package controllers

import (
	"net/http"

	"github.com/martinortega/abarrote-pos/api/responses"
	"github.com/martinortega/abarrote-pos/internal/promo"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

// PromotionsController exposes the loaded promotion catalog and its reload
// trigger.
type PromotionsController struct {
	catalog *promo.Catalog
	logg    *logger.Logger
}

func NewPromotionsController(catalog *promo.Catalog, logg *logger.Logger) *PromotionsController {
	return &PromotionsController{catalog: catalog, logg: logg}
}

func (c *PromotionsController) List(w http.ResponseWriter, r *http.Request) {
	set := c.catalog.Get()
	responses.WriteSuccess(w, map[string]any{
		"combos":       set.Combos,
		"single_bogos": set.SingleBogos,
		"multi_bogos":  set.MultiBogos,
	})
}

// Reload refreshes the catalog from the remote store. Load degrades on its
// own when the remote is unreachable, so this always reports the resulting
// set rather than an error.
func (c *PromotionsController) Reload(w http.ResponseWriter, r *http.Request) {
	c.catalog.Load(r.Context())
	set := c.catalog.Get()
	responses.WriteSuccess(w, map[string]any{
		"combos":       len(set.Combos),
		"single_bogos": len(set.SingleBogos),
		"multi_bogos":  len(set.MultiBogos),
	})
}

package controllers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/internal/cart"
	"github.com/martinortega/abarrote-pos/internal/promo"
	"github.com/martinortega/abarrote-pos/pkg/config"
	"github.com/martinortega/abarrote-pos/pkg/logger"
)

type emptyPromos struct{}

func (emptyPromos) Get() promo.Set { return promo.Set{} }

func newControllerEngine() *cart.Engine {
	cfg := config.CartConfig{AddDebounce: 2 * time.Millisecond, EditDebounce: 2 * time.Millisecond}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return cart.NewEngine(cfg, emptyPromos{}, nil, nil, logg)
}

func cartRouter(ctl *CartController) http.Handler {
	r := chi.NewRouter()
	r.Get("/cart", ctl.List)
	r.Post("/cart/lines", ctl.AddLine)
	r.Patch("/cart/lines/{lineID}", ctl.UpdateLine)
	r.Delete("/cart/lines/{lineID}", ctl.RemoveLine)
	r.Post("/cart/clear", ctl.Clear)
	return r
}

func TestAddLineAcceptsScan(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	engine := newControllerEngine()
	router := cartRouter(NewCartController(engine, logg))

	productID := uuid.New()
	body := `{"product_id":"` + productID.String() + `","name":"Soda","price":2.5,"quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/cart/lines", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if lines := engine.Lines(); len(lines) != 1 || lines[0].Name != "Soda" {
		t.Fatalf("line not registered: %+v", lines)
	}
}

func TestAddLineRejectsGarbage(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	router := cartRouter(NewCartController(newControllerEngine(), logg))

	req := httptest.NewRequest(http.MethodPost, "/cart/lines", strings.NewReader(`{"name":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateLineQuantityZeroRemoves(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	engine := newControllerEngine()
	router := cartRouter(NewCartController(engine, logg))

	productID := uuid.New()
	engine.AddLine(cart.Line{ID: productID.String(), ProductID: productID, Name: "Soda", Price: 2.5, Quantity: 2})

	req := httptest.NewRequest(http.MethodPatch, "/cart/lines/"+productID.String(), strings.NewReader(`{"quantity":0}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if lines := engine.Lines(); len(lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
}

func TestClearEmptiesCart(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	engine := newControllerEngine()
	router := cartRouter(NewCartController(engine, logg))

	productID := uuid.New()
	engine.AddLine(cart.Line{ID: productID.String(), ProductID: productID, Name: "Soda", Price: 2.5, Quantity: 1})

	req := httptest.NewRequest(http.MethodPost, "/cart/clear", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if lines := engine.Lines(); len(lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", lines)
	}
}

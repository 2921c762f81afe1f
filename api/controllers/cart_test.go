package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/api/middleware"
	cartsvc "github.com/sportshoplabs/sportshop-backend/internal/cart"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
)

type stubCartService struct {
	update  *cartsvc.QuantityUpdate
	summary *cartsvc.Summary
	err     error
}

func (s stubCartService) AddItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	return nil, s.err
}

func (s stubCartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return s.err
}

func (s stubCartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, action string) (*cartsvc.QuantityUpdate, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.update, nil
}

func (s stubCartService) Summary(ctx context.Context, userID uuid.UUID, discountID *uuid.UUID) (*cartsvc.Summary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestCartUpdateQuantityKeepsLegacyShape(t *testing.T) {
	update := &cartsvc.QuantityUpdate{
		Quantity: 2,
		ItemSum:  decimal.RequireFromString("501.00"),
		Total:    decimal.RequireFromString("2501.00"),
	}
	handler := CartUpdateQuantity(stubCartService{update: update}, nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/items/x/quantity", `{"action":"plus"}`)
	req = withURLParam(req, "itemID", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	// The widget binds to the bare legacy keys, not the data envelope.
	var body map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := body["data"]; ok {
		t.Fatalf("legacy quantity body must not be wrapped in a data envelope")
	}
	if string(body["quantity"]) != "2" {
		t.Fatalf("unexpected quantity: %s", body["quantity"])
	}
	// Money fields keep their trailing zeros.
	if string(body["item_sum"]) != `"501.00"` {
		t.Fatalf("unexpected item_sum: %s", body["item_sum"])
	}
	if string(body["total"]) != `"2501.00"` {
		t.Fatalf("unexpected total: %s", body["total"])
	}
}

func TestCartUpdateQuantityRejectsUnknownAction(t *testing.T) {
	handler := CartUpdateQuantity(stubCartService{}, nil)

	req := authedRequest(http.MethodPost, "/api/v1/cart/items/x/quantity", `{"action":"double"}`)
	req = withURLParam(req, "itemID", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCartSummarySerializesTotals(t *testing.T) {
	cartID := uuid.New()
	summary := &cartsvc.Summary{
		CartID:         cartID,
		TotalPrice:     decimal.RequireFromString("2250.50"),
		DiscountAmount: decimal.RequireFromString("225.05"),
		FinalPrice:     decimal.RequireFromString("2025.45"),
	}
	handler := CartSummary(stubCartService{summary: summary}, nil)

	req := authedRequest(http.MethodGet, "/api/v1/cart", "")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data cartSummaryResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.CartID != cartID {
		t.Fatalf("unexpected cart id: %s", envelope.Data.CartID)
	}
	if envelope.Data.FinalPrice.StringFixed(2) != "2025.45" {
		t.Fatalf("unexpected final price: %s", envelope.Data.FinalPrice)
	}
}

func TestCartSummaryRequiresAuth(t *testing.T) {
	handler := CartSummary(stubCartService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCartRemoveItemPropagatesNotFound(t *testing.T) {
	handler := CartRemoveItem(stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")}, nil)

	req := authedRequest(http.MethodDelete, "/api/v1/cart/items/x", "")
	req = withURLParam(req, "itemID", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/api/responses"
	"github.com/sportshoplabs/sportshop-backend/api/validators"
	cartsvc "github.com/sportshoplabs/sportshop-backend/internal/cart"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/logger"
	"github.com/sportshoplabs/sportshop-backend/pkg/money"
)

type cartLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	Product   productResponse `json:"product"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

type cartSummaryResponse struct {
	CartID         uuid.UUID          `json:"cart_id"`
	Items          []cartLineResponse `json:"items"`
	TotalPrice     decimal.Decimal    `json:"total_price"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
	FinalPrice     decimal.Decimal    `json:"final_price"`
	DiscountID     *uuid.UUID         `json:"discount_id,omitempty"`
}

func newCartSummaryResponse(summary *cartsvc.Summary) cartSummaryResponse {
	items := make([]cartLineResponse, 0, len(summary.Lines))
	for _, line := range summary.Lines {
		items = append(items, newCartLineResponse(line.Item, line.Total))
	}
	return cartSummaryResponse{
		CartID:         summary.CartID,
		Items:          items,
		TotalPrice:     summary.TotalPrice,
		DiscountAmount: summary.DiscountAmount,
		FinalPrice:     summary.FinalPrice,
		DiscountID:     summary.DiscountID,
	}
}

func newCartLineResponse(item models.CartItem, total decimal.Decimal) cartLineResponse {
	return cartLineResponse{
		ID:        item.ID,
		Product:   newProductResponse(item.Product),
		Quantity:  item.Quantity,
		Total:     total,
		CreatedAt: item.CreatedAt,
	}
}

// CartSummary serves the caller's cart with totals recomputed from live
// prices. The optional discount_id query applies a whole-cart discount.
func CartSummary(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discountID, err := validators.QueryUUID(r, "discount_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), userID, discountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartSummaryResponse(summary))
	}
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// CartAddItem adds one unit of the product, creating the line or bumping an
// existing one.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.PathUUID(payload.ProductID, "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		total := money.LineTotal(item.Product.Price, item.Quantity)
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartLineResponse(*item, total))
	}
}

// CartRemoveItem deletes the line when it belongs to the caller's cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.PathUUID(chi.URLParam(r, "itemID"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

type updateQuantityRequest struct {
	Action string `json:"action" validate:"required,oneof=plus minus"`
}

// quantityWidgetResponse is the legacy AJAX body. Money fields are rendered
// with two decimals, matching what the storefront widget parses.
type quantityWidgetResponse struct {
	Quantity int    `json:"quantity"`
	ItemSum  string `json:"item_sum"`
	Total    string `json:"total"`
}

func newQuantityWidgetResponse(update *cartsvc.QuantityUpdate) quantityWidgetResponse {
	return quantityWidgetResponse{
		Quantity: update.Quantity,
		ItemSum:  update.ItemSum.StringFixed(2),
		Total:    update.Total.StringFixed(2),
	}
}

// CartUpdateQuantity applies the plus/minus widget action. The response body
// keeps the legacy AJAX shape the storefront widget binds to, outside the
// data envelope.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.PathUUID(chi.URLParam(r, "itemID"), "item id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		update, err := svc.UpdateQuantity(r.Context(), userID, itemID, payload.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, newQuantityWidgetResponse(update))
	}
}

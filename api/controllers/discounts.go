package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sportshoplabs/sportshop-backend/api/responses"
	"github.com/sportshoplabs/sportshop-backend/api/validators"
	discountsvc "github.com/sportshoplabs/sportshop-backend/internal/discounts"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/logger"
)

type discountDetailResponse struct {
	discountResponse
	Status          string `json:"status"`
	DurationDays    int    `json:"duration_days"`
	ProductCount    int    `json:"product_count"`
	InStockProducts int64  `json:"in_stock_products"`
}

func newDiscountDetailResponse(dto discountsvc.DiscountDTO) discountDetailResponse {
	return discountDetailResponse{
		discountResponse: newDiscountResponse(dto.Discount),
		Status:           dto.Status,
		DurationDays:     dto.DurationDays,
		ProductCount:     dto.ProductCount,
		InStockProducts:  dto.InStockProducts,
	}
}

// DiscountList serves every discount with its derived listing fields.
func DiscountList(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]discountDetailResponse, 0, len(list))
		for _, dto := range list {
			out = append(out, newDiscountDetailResponse(dto))
		}
		responses.WriteSuccess(w, out)
	}
}

// DiscountGet serves one discount with its derived listing fields.
func DiscountGet(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		id, err := validators.PathUUID(chi.URLParam(r, "discountID"), "discount id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newDiscountDetailResponse(*dto))
	}
}

package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sportshoplabs/sportshop-backend/api/middleware"
	"github.com/sportshoplabs/sportshop-backend/api/responses"
	"github.com/sportshoplabs/sportshop-backend/api/validators"
	reviewsvc "github.com/sportshoplabs/sportshop-backend/internal/reviews"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/logger"
)

type submitReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// submitReviewResponse keeps the legacy widget shape: a success flag plus a
// field-keyed error map, with cross-field errors under "__all__".
type submitReviewResponse struct {
	Success bool                `json:"success"`
	Review  *reviewResponse     `json:"review,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// ReviewCreate submits a review for the product. The response body keeps the
// legacy success/errors shape the review widget binds to, outside the data
// envelope.
func ReviewCreate(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteJSON(w, http.StatusOK, submitReviewResponse{
				Success: false,
				Errors:  reviewErrorMap(err),
			})
			return
		}

		review, err := svc.Create(r.Context(), reviewsvc.CreateInput{
			ProductID: productID,
			UserID:    userID,
			Rating:    payload.Rating,
			Comment:   payload.Comment,
		})
		if err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && (typed.Code() == pkgerrors.CodeValidation || typed.Code() == pkgerrors.CodeConflict) {
				responses.WriteJSON(w, http.StatusOK, submitReviewResponse{
					Success: false,
					Errors:  reviewErrorMap(err),
				})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := newReviewResponse(*review)
		responses.WriteJSON(w, http.StatusOK, submitReviewResponse{Success: true, Review: &out})
	}
}

// reviewErrorMap folds an error into the widget's field->messages map.
// Validation details keep their field keys; everything else lands under
// "__all__".
func reviewErrorMap(err error) map[string][]string {
	out := map[string][]string{}

	typed := pkgerrors.As(err)
	if typed == nil {
		out["__all__"] = []string{err.Error()}
		return out
	}

	if details, ok := typed.Details().(map[string]string); ok && len(details) > 0 {
		for field, msg := range details {
			out[field] = []string{msg}
		}
		return out
	}

	out["__all__"] = []string{typed.Message()}
	return out
}

type productReviewsResponse struct {
	Reviews       []reviewResponse `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
}

// ReviewsByProduct serves a product's reviews with the average rating.
func ReviewsByProduct(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		productID, err := validators.PathUUID(chi.URLParam(r, "productID"), "product id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]reviewResponse, 0, len(result.Reviews))
		for _, review := range result.Reviews {
			out = append(out, newReviewResponse(review))
		}
		responses.WriteSuccess(w, productReviewsResponse{
			Reviews:       out,
			AverageRating: result.AverageRating,
		})
	}
}

// ReviewUpdate edits a review. A non-owner hit is a silent no-op returning
// the unchanged review.
func ReviewUpdate(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviewID, err := validators.PathUUID(chi.URLParam(r, "reviewID"), "review id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.Update(r.Context(), reviewID, userID, middleware.IsStaffFromContext(r.Context()), reviewsvc.UpdateInput{
			Rating:  payload.Rating,
			Comment: payload.Comment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newReviewResponse(*review))
	}
}

// ReviewDelete removes a review. A non-owner hit is a silent no-op.
func ReviewDelete(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "review service unavailable"))
			return
		}

		userID, err := authedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reviewID, err := validators.PathUUID(chi.URLParam(r, "reviewID"), "review id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), reviewID, userID, middleware.IsStaffFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

package reviews

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
)

// DuplicateReviewMessage is the storefront wording for a repeat review.
const DuplicateReviewMessage = "Вы уже оставили отзыв для этого товара."

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CreateInput captures a new review submission.
type CreateInput struct {
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
}

// UpdateInput captures an edit to an existing review.
type UpdateInput struct {
	Rating  int
	Comment string
}

// ProductReviews bundles a product's reviews with the average rating.
type ProductReviews struct {
	Reviews       []models.Review
	AverageRating float64
}

// Service exposes review operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) (*ProductReviews, error)
	Update(ctx context.Context, reviewID, userID uuid.UUID, staff bool, input UpdateInput) (*models.Review, error)
	Delete(ctx context.Context, reviewID, userID uuid.UUID, staff bool) error
}

type service struct {
	repo     Repository
	products productLoader
}

// NewService builds a review service backed by the provided stack.
func NewService(repo Repository, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, products: products}, nil
}

// Create validates and stores a review. Uniqueness per (product, user) is
// pre-checked to surface the storefront message; the unique index still
// backstops concurrent submissions.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Review, error) {
	if err := validateReview(input.Rating, input.Comment); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForProductAndUser(ctx, input.ProductID, input.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, DuplicateReviewMessage)
	}

	review := &models.Review{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   strings.TrimSpace(input.Comment),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *service) ListByProduct(ctx context.Context, productID uuid.UUID) (*ProductReviews, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	list, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	avg, err := s.repo.AverageRating(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductReviews{Reviews: list, AverageRating: avg}, nil
}

// Update edits the review when the caller owns it or is staff. A non-owner
// hit changes nothing and reports no error, matching the storefront's
// silent redirect.
func (s *service) Update(ctx context.Context, reviewID, userID uuid.UUID, staff bool, input UpdateInput) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID && !staff {
		return review, nil
	}

	if err := validateReview(input.Rating, input.Comment); err != nil {
		return nil, err
	}

	review.Rating = input.Rating
	review.Comment = strings.TrimSpace(input.Comment)
	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Delete removes the review when the caller owns it or is staff; otherwise
// it is a silent no-op.
func (s *service) Delete(ctx context.Context, reviewID, userID uuid.UUID, staff bool) error {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID && !staff {
		return nil
	}
	return s.repo.Delete(ctx, reviewID)
}

func validateReview(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if strings.TrimSpace(comment) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment is required")
	}
	return nil
}

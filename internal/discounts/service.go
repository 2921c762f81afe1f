package discounts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
)

// Service exposes discount read operations plus the back-office listing
// enrichment (status label, duration, product counts).
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*DiscountDTO, error)
	List(ctx context.Context) ([]DiscountDTO, error)
}

// DiscountDTO is the discount enriched with derived listing fields.
type DiscountDTO struct {
	Discount        models.Discount
	Status          string
	DurationDays    int
	ProductCount    int
	InStockProducts int64
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a discount service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DiscountDTO, error) {
	discount, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto, err := s.enrich(ctx, *discount)
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]DiscountDTO, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]DiscountDTO, 0, len(all))
	for _, d := range all {
		dto, err := s.enrich(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *service) enrich(ctx context.Context, d models.Discount) (DiscountDTO, error) {
	inStock, err := s.repo.CountInStockProducts(ctx, d.ID)
	if err != nil {
		return DiscountDTO{}, err
	}
	return DiscountDTO{
		Discount:        d,
		Status:          StatusLabel(d, s.now()),
		DurationDays:    DurationDays(d),
		ProductCount:    len(d.Products),
		InStockProducts: inStock,
	}, nil
}

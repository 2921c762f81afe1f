package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/pkg/config"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/pagination"
)

// Landing page highlight size, matching the storefront's five-item shelves.
const storefrontShelfSize = 5

// Service exposes catalog reads, product CRUD, and the storefront summary.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) (*ProductPage, error)
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetAggregates(ctx context.Context) (*Aggregates, error)
	GetStorefront(ctx context.Context) (*Storefront, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

type service struct {
	repo Repository
	site config.SiteConfig
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo Repository, site config.SiteConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, site: site}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ProductPage, error) {
	if filter.PriceMin != nil && filter.PriceMax != nil && filter.PriceMin.GreaterThan(*filter.PriceMax) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_min must not exceed price_max")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	limit := pagination.NormalizeLimit(filter.Limit)
	page := &ProductPage{Products: rows}
	if len(rows) > limit {
		page.Products = rows[:limit]
		last := page.Products[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if err := validateProduct(input.Name, input.Price, input.Stock, input.Size); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:         strings.TrimSpace(input.Name),
		Description:  strings.TrimSpace(input.Description),
		Price:        input.Price,
		Stock:        input.Stock,
		CategoryID:   input.CategoryID,
		BrandID:      input.BrandID,
		Size:         input.Size,
		ExternalPage: input.ExternalPage,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	if len(input.TagIDs) > 0 {
		if err := s.repo.ReplaceTags(ctx, product.ID, input.TagIDs); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		product.CategoryID = *input.CategoryID
	}
	if input.BrandID != nil {
		product.BrandID = *input.BrandID
	}
	if input.Size != nil {
		product.Size = *input.Size
	}
	if input.ExternalPage != nil {
		product.ExternalPage = input.ExternalPage
	}

	if err := validateProduct(product.Name, product.Price, product.Stock, product.Size); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) GetAggregates(ctx context.Context) (*Aggregates, error) {
	return s.repo.Aggregates(ctx)
}

// GetStorefront assembles the landing page: five newest products, five most
// ordered, the five highest flagged discounts, the average price, and the
// category list, under the configured site identity.
func (s *service) GetStorefront(ctx context.Context) (*Storefront, error) {
	newest, err := s.repo.Newest(ctx, storefrontShelfSize)
	if err != nil {
		return nil, err
	}
	popular, err := s.repo.MostOrdered(ctx, storefrontShelfSize)
	if err != nil {
		return nil, err
	}
	topDiscounts, err := s.repo.TopActiveDiscounts(ctx, storefrontShelfSize)
	if err != nil {
		return nil, err
	}
	aggregates, err := s.repo.Aggregates(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	return &Storefront{
		SiteTitle:       s.site.Title,
		SiteHeader:      s.site.Header,
		NewProducts:     newest,
		PopularProducts: popular,
		TopDiscounts:    topDiscounts,
		AveragePrice:    aggregates.AveragePrice,
		Categories:      categories,
	}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.repo.ListBrands(ctx)
}

func (s *service) ListTags(ctx context.Context) ([]models.Tag, error) {
	return s.repo.ListTags(ctx)
}

func validateProduct(name string, price decimal.Decimal, stock int, size enums.ProductSize) error {
	if strings.TrimSpace(name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}
	if !size.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "size must be one of S, M, L, XL")
	}
	return nil
}

package catalog

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/pkg/config"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/money"
	"github.com/sportshoplabs/sportshop-backend/pkg/pagination"
)

func TestCreateValidatesFields(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Name:  "   ",
		Price: money.MustFromString("10.00"),
		Size:  enums.ProductSizeM,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateProductInput{
		Name:  "Кроссовки",
		Price: money.MustFromString("-1.00"),
		Size:  enums.ProductSizeM,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Create(context.Background(), CreateProductInput{
		Name:  "Кроссовки",
		Price: money.MustFromString("10.00"),
		Size:  enums.ProductSize("XXL"),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name:  "Кроссовки",
		Price: money.MustFromString("10.00"),
		Stock: 3,
		Size:  enums.ProductSizeM,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.Name != "Кроссовки" {
		t.Fatalf("unexpected product: %+v", product)
	}
}

func TestUpdateAppliesPartialChanges(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name:  "Кроссовки",
		Price: money.MustFromString("10.00"),
		Stock: 3,
		Size:  enums.ProductSizeM,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	newPrice := money.MustFromString("12.50")
	updated, err := svc.Update(context.Background(), product.ID, UpdateProductInput{Price: &newPrice})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Price.StringFixed(2) != "12.50" {
		t.Fatalf("expected updated price, got %s", updated.Price)
	}
	if updated.Name != "Кроссовки" || updated.Stock != 3 {
		t.Fatalf("unset fields must be kept: %+v", updated)
	}

	negative := money.MustFromString("-5.00")
	_, err = svc.Update(context.Background(), product.ID, UpdateProductInput{Price: &negative})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListPaginatesWithCursor(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	svc := newTestService(t, repo)

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		repo.add(&models.Product{
			ID:        uuid.New(),
			Name:      "Товар",
			Price:     money.MustFromString("10.00"),
			Size:      enums.ProductSizeM,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	page, err := svc.List(context.Background(), ListFilter{Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(page.Products))
	}
	if page.NextCursor == "" {
		t.Fatal("expected a next cursor")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rest, err := svc.List(context.Background(), ListFilter{Limit: 3, Cursor: cursor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rest.Products) != 2 {
		t.Fatalf("expected 2 remaining products, got %d", len(rest.Products))
	}
	if rest.NextCursor != "" {
		t.Fatal("expected no cursor on the last page")
	}
}

func TestListRejectsInvertedPriceRange(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newStubCatalogRepo())

	min := money.MustFromString("100.00")
	max := money.MustFromString("50.00")
	_, err := svc.List(context.Background(), ListFilter{PriceMin: &min, PriceMax: &max})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetStorefrontCarriesSiteIdentity(t *testing.T) {
	t.Parallel()

	repo := newStubCatalogRepo()
	repo.add(&models.Product{
		ID:        uuid.New(),
		Name:      "Товар",
		Price:     money.MustFromString("10.00"),
		Size:      enums.ProductSizeM,
		CreatedAt: time.Now(),
	})
	svc := newTestService(t, repo)

	storefront, err := svc.GetStorefront(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if storefront.SiteTitle != "Спортивный магазин" || storefront.SiteHeader != "Экипировка для спорта" {
		t.Fatalf("unexpected site identity: %+v", storefront)
	}
	if len(storefront.NewProducts) != 1 {
		t.Fatalf("expected 1 new product, got %d", len(storefront.NewProducts))
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()

	site := config.SiteConfig{Title: "Спортивный магазин", Header: "Экипировка для спорта"}
	svc, err := NewService(repo, site)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

type stubCatalogRepo struct {
	products map[uuid.UUID]*models.Product
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{products: map[uuid.UUID]*models.Product{}}
}

func (s *stubCatalogRepo) add(p *models.Product) { s.products[p.ID] = p }

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func (s *stubCatalogRepo) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.products {
		if filter.Cursor != nil {
			after := p.CreatedAt.After(filter.Cursor.CreatedAt) ||
				(p.CreatedAt.Equal(filter.Cursor.CreatedAt) && p.ID == filter.Cursor.ID)
			if after {
				continue
			}
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	limit := pagination.LimitWithBuffer(filter.Limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubCatalogRepo) Create(ctx context.Context, product *models.Product) error {
	product.ID = uuid.New()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	copied := *product
	s.products[product.ID] = &copied
	return nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, product *models.Product) error {
	if p, ok := s.products[product.ID]; ok {
		*p = *product
	}
	return nil
}

func (s *stubCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.products, id)
	return nil
}

func (s *stubCatalogRepo) ReplaceTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	return nil
}

func (s *stubCatalogRepo) Aggregates(ctx context.Context) (*Aggregates, error) {
	return &Aggregates{ProductCount: int64(len(s.products))}, nil
}

func (s *stubCatalogRepo) Newest(ctx context.Context, limit int) ([]models.Product, error) {
	out, _ := s.List(ctx, ListFilter{Limit: limit})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubCatalogRepo) MostOrdered(ctx context.Context, limit int) ([]models.Product, error) {
	return s.Newest(ctx, limit)
}

func (s *stubCatalogRepo) TopActiveDiscounts(ctx context.Context, limit int) ([]models.Discount, error) {
	return nil, nil
}

func (s *stubCatalogRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	return nil, nil
}

func (s *stubCatalogRepo) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return nil, nil
}

func (s *stubCatalogRepo) ListTags(ctx context.Context) ([]models.Tag, error) {
	return nil, nil
}

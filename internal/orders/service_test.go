package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/money"
)

func TestFinalizeFreezesPricesAndTotals(t *testing.T) {
	t.Parallel()

	shoes := &models.Product{ID: uuid.New(), Price: money.MustFromString("1000.00")}
	socks := &models.Product{ID: uuid.New(), Price: money.MustFromString("250.50")}
	repo := &stubOrderRepo{}
	svc := newTestService(t, repo, stubProducts{shoes.ID: shoes, socks.ID: socks}, stubDiscounts{})

	order, err := svc.Finalize(context.Background(), uuid.New(), []LineInput{
		{ProductID: shoes.ID, Quantity: 2},
		{ProductID: socks.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.TotalPrice.StringFixed(2) != "2250.50" {
		t.Fatalf("expected total 2250.50, got %s", order.TotalPrice)
	}
	if order.DiscountedTotal.StringFixed(2) != "2250.50" {
		t.Fatalf("expected discounted total to match without discounts, got %s", order.DiscountedTotal)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 frozen lines, got %d", len(order.Items))
	}
	if order.Items[0].Price.StringFixed(2) != "1000.00" {
		t.Fatalf("expected frozen unit price, got %s", order.Items[0].Price)
	}
	if repo.created == nil {
		t.Fatal("expected order to be persisted")
	}
}

func TestFinalizeAppliesLineDiscountWithPerLineRounding(t *testing.T) {
	t.Parallel()

	shoes := &models.Product{ID: uuid.New(), Price: money.MustFromString("1000.00")}
	discount := &models.Discount{
		ID:       uuid.New(),
		Percent:  10,
		Products: []models.Product{{ID: shoes.ID}},
	}
	repo := &stubOrderRepo{}
	svc := newTestService(t, repo, stubProducts{shoes.ID: shoes}, stubDiscounts{discount.ID: discount})

	order, err := svc.Finalize(context.Background(), uuid.New(), []LineInput{
		{ProductID: shoes.ID, Quantity: 2, DiscountID: &discount.ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.TotalPrice.StringFixed(2) != "2000.00" {
		t.Fatalf("expected gross 2000.00, got %s", order.TotalPrice)
	}
	if order.DiscountedTotal.StringFixed(2) != "1800.00" {
		t.Fatalf("expected discounted 1800.00, got %s", order.DiscountedTotal)
	}
	if order.Items[0].DiscountID == nil || *order.Items[0].DiscountID != discount.ID {
		t.Fatal("expected the discount to be frozen on the line")
	}
}

func TestFinalizeRejectsForeignDiscountAtomically(t *testing.T) {
	t.Parallel()

	shoes := &models.Product{ID: uuid.New(), Price: money.MustFromString("1000.00")}
	socks := &models.Product{ID: uuid.New(), Price: money.MustFromString("250.50")}
	discount := &models.Discount{
		ID:       uuid.New(),
		Percent:  10,
		Products: []models.Product{{ID: shoes.ID}},
	}
	repo := &stubOrderRepo{}
	svc := newTestService(t, repo, stubProducts{shoes.ID: shoes, socks.ID: socks}, stubDiscounts{discount.ID: discount})

	_, err := svc.Finalize(context.Background(), uuid.New(), []LineInput{
		{ProductID: shoes.ID, Quantity: 1},
		{ProductID: socks.ID, Quantity: 1, DiscountID: &discount.ID},
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created != nil {
		t.Fatal("no partial order may be persisted when a line fails")
	}
}

func TestFinalizeUsesUnitPriceOverride(t *testing.T) {
	t.Parallel()

	shoes := &models.Product{ID: uuid.New(), Price: money.MustFromString("1000.00")}
	repo := &stubOrderRepo{}
	svc := newTestService(t, repo, stubProducts{shoes.ID: shoes}, stubDiscounts{})

	override := money.MustFromString("900.00")
	order, err := svc.Finalize(context.Background(), uuid.New(), []LineInput{
		{ProductID: shoes.ID, Quantity: 1, UnitPrice: &override},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Items[0].Price.StringFixed(2) != "900.00" {
		t.Fatalf("expected override to be frozen, got %s", order.Items[0].Price)
	}
	if order.TotalPrice.StringFixed(2) != "900.00" {
		t.Fatalf("expected total 900.00, got %s", order.TotalPrice)
	}
}

func TestFinalizeValidatesInput(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{}
	svc := newTestService(t, repo, stubProducts{}, stubDiscounts{})

	_, err := svc.Finalize(context.Background(), uuid.New(), nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error for empty lines: %v", err)
	}

	_, err = svc.Finalize(context.Background(), uuid.Nil, []LineInput{{ProductID: uuid.New(), Quantity: 1}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error for missing user: %v", err)
	}

	_, err = svc.Finalize(context.Background(), uuid.New(), []LineInput{{ProductID: uuid.New(), Quantity: 0}})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error for zero quantity: %v", err)
	}
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	t.Parallel()

	order := &models.Order{ID: uuid.New(), Status: enums.OrderStatusPending}
	repo := &stubOrderRepo{existing: order}
	svc := newTestService(t, repo, stubProducts{}, stubDiscounts{})

	got, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != enums.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", got.Status)
	}

	repo.existing.Status = enums.OrderStatusDelivered
	_, err = svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusShipped)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict going backwards, got %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatus("cancelled"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestRecomputeRebuildsTotalsFromFrozenLines(t *testing.T) {
	t.Parallel()

	discount := models.Discount{ID: uuid.New(), Percent: 10}
	order := &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusPending,
		// Stale totals on purpose.
		TotalPrice:      decimal.Zero,
		DiscountedTotal: decimal.Zero,
		Items: []models.OrderItem{
			{Price: money.MustFromString("1000.00"), Quantity: 2, DiscountID: &discount.ID, Discount: &discount},
			{Price: money.MustFromString("250.50"), Quantity: 1},
		},
	}
	repo := &stubOrderRepo{existing: order}
	svc := newTestService(t, repo, stubProducts{}, stubDiscounts{})

	got, err := svc.Recompute(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalPrice.StringFixed(2) != "2250.50" {
		t.Fatalf("expected total 2250.50, got %s", got.TotalPrice)
	}
	if got.DiscountedTotal.StringFixed(2) != "2050.50" {
		t.Fatalf("expected discounted 2050.50, got %s", got.DiscountedTotal)
	}
}

func TestGetScopesToOwnerUnlessStaff(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	order := &models.Order{ID: uuid.New(), UserID: owner}
	repo := &stubOrderRepo{existing: order}
	svc := newTestService(t, repo, stubProducts{}, stubDiscounts{})

	if _, err := svc.Get(context.Background(), order.ID, owner, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := svc.Get(context.Background(), order.ID, uuid.New(), false)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}

	if _, err := svc.Get(context.Background(), order.ID, uuid.New(), true); err != nil {
		t.Fatalf("staff must read any order: %v", err)
	}
}

func newTestService(t *testing.T, repo Repository, products stubProducts, discounts stubDiscounts) Service {
	t.Helper()

	svc, err := NewService(repo, stubTxRunner{}, products, discounts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProducts map[uuid.UUID]*models.Product

func (s stubProducts) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

type stubDiscounts map[uuid.UUID]*models.Discount

func (s stubDiscounts) GetByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	if d, ok := s[id]; ok {
		return d, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
}

type stubOrderRepo struct {
	existing *models.Order
	created  *models.Order
	totals   *[2]decimal.Decimal
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrderRepo) Create(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New()
	s.created = order
	return nil
}

func (s *stubOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.existing == nil || s.existing.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	copied := *s.existing
	return &copied, nil
}

func (s *stubOrderRepo) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	if s.existing == nil || s.existing.ID != id || s.existing.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	copied := *s.existing
	return &copied, nil
}

func (s *stubOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	if s.existing != nil && s.existing.UserID == userID {
		return []models.Order{*s.existing}, nil
	}
	return nil, nil
}

func (s *stubOrderRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	if s.existing != nil {
		return []models.Order{*s.existing}, nil
	}
	return nil, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if s.existing != nil && s.existing.ID == id {
		s.existing.Status = status
	}
	return nil
}

func (s *stubOrderRepo) UpdateTotals(ctx context.Context, id uuid.UUID, total, discounted decimal.Decimal) error {
	s.totals = &[2]decimal.Decimal{total, discounted}
	return nil
}

func (s *stubOrderRepo) SetInvoiceFile(ctx context.Context, id uuid.UUID, fileRef string) error {
	if s.existing != nil && s.existing.ID == id {
		s.existing.InvoiceFile = &fileRef
	}
	return nil
}

package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/money"
)

func TestAddItemCreatesLineThenIncrements(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: uuid.New(), Price: money.MustFromString("1000.00")}
	products := stubProducts{product.ID: product}
	repo := newStubCartRepo(uuid.New(), products)
	svc := newTestService(t, repo, products, nil)

	item, err := svc.AddItem(context.Background(), repo.userID, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", item.Quantity)
	}

	item, err = svc.AddItem(context.Background(), repo.userID, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Quantity != 2 {
		t.Fatalf("expected quantity 2 after second add, got %d", item.Quantity)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	products := stubProducts{}
	repo := newStubCartRepo(uuid.New(), products)
	svc := newTestService(t, repo, products, nil)

	_, err := svc.AddItem(context.Background(), repo.userID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpdateQuantityMinusFloorsAtOne(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: uuid.New(), Price: money.MustFromString("250.50")}
	products := stubProducts{product.ID: product}
	repo := newStubCartRepo(uuid.New(), products)
	svc := newTestService(t, repo, products, nil)

	item, err := svc.AddItem(context.Background(), repo.userID, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.UpdateQuantity(context.Background(), repo.userID, item.ID, ActionMinus)
	if err != nil {
		t.Fatalf("minus at quantity 1 must be a no-op, got %v", err)
	}
	if got.Quantity != 1 {
		t.Fatalf("expected quantity to stay at 1, got %d", got.Quantity)
	}
	if got.ItemSum.StringFixed(2) != "250.50" || got.Total.StringFixed(2) != "250.50" {
		t.Fatalf("unexpected sums: %s / %s", got.ItemSum, got.Total)
	}

	got, err = svc.UpdateQuantity(context.Background(), repo.userID, item.ID, ActionPlus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Quantity != 2 || got.ItemSum.StringFixed(2) != "501.00" {
		t.Fatalf("unexpected plus result: %+v", got)
	}
}

func TestUpdateQuantityRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: uuid.New(), Price: money.MustFromString("10.00")}
	products := stubProducts{product.ID: product}
	repo := newStubCartRepo(uuid.New(), products)
	svc := newTestService(t, repo, products, nil)

	item, err := svc.AddItem(context.Background(), repo.userID, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.UpdateQuantity(context.Background(), repo.userID, item.ID, "reset")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSummaryAppliesSelectedDiscount(t *testing.T) {
	t.Parallel()

	shoes := &models.Product{ID: uuid.New(), Price: money.MustFromString("1000.00")}
	socks := &models.Product{ID: uuid.New(), Price: money.MustFromString("250.50")}
	discount := &models.Discount{ID: uuid.New(), Percent: 10}

	products := stubProducts{shoes.ID: shoes, socks.ID: socks}
	repo := newStubCartRepo(uuid.New(), products)
	svc := newTestService(t, repo, products, discount)

	for i := 0; i < 2; i++ {
		if _, err := svc.AddItem(context.Background(), repo.userID, shoes.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := svc.AddItem(context.Background(), repo.userID, socks.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := svc.Summary(context.Background(), repo.userID, &discount.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalPrice.StringFixed(2) != "2250.50" {
		t.Fatalf("expected total 2250.50, got %s", summary.TotalPrice)
	}
	if summary.DiscountAmount.StringFixed(2) != "225.05" {
		t.Fatalf("expected discount 225.05, got %s", summary.DiscountAmount)
	}
	if summary.FinalPrice.StringFixed(2) != "2025.45" {
		t.Fatalf("expected final 2025.45, got %s", summary.FinalPrice)
	}
}

func TestSummaryUnknownDiscountFallsBackSilently(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: uuid.New(), Price: money.MustFromString("100.00")}
	products := stubProducts{product.ID: product}
	repo := newStubCartRepo(uuid.New(), products)
	svc := newTestService(t, repo, products, nil)

	if _, err := svc.AddItem(context.Background(), repo.userID, product.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unknown := uuid.New()
	summary, err := svc.Summary(context.Background(), repo.userID, &unknown)
	if err != nil {
		t.Fatalf("unknown discount must not fail the summary: %v", err)
	}
	if summary.DiscountID != nil || !summary.DiscountAmount.IsZero() {
		t.Fatalf("expected no discount applied: %+v", summary)
	}
	if summary.FinalPrice.StringFixed(2) != "100.00" {
		t.Fatalf("expected final 100.00, got %s", summary.FinalPrice)
	}
}

func TestRemoveItemScopedToOwner(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: uuid.New(), Price: money.MustFromString("10.00")}
	products := stubProducts{product.ID: product}
	repo := newStubCartRepo(uuid.New(), products)
	svc := newTestService(t, repo, products, nil)

	item, err := svc.AddItem(context.Background(), repo.userID, product.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = svc.RemoveItem(context.Background(), uuid.New(), item.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign user must see not found, got %v", err)
	}

	if err := svc.RemoveItem(context.Background(), repo.userID, item.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(repo.items))
	}
}

func newTestService(t *testing.T, repo *stubCartRepo, products stubProducts, discount *models.Discount) Service {
	t.Helper()

	discounts := stubDiscounts{}
	if discount != nil {
		discounts[discount.ID] = discount
	}

	svc, err := NewService(repo, products, discounts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
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

// stubCartRepo keeps one in-memory cart. Reads attach the product record the
// way the GORM repository's preloads do.
type stubCartRepo struct {
	userID   uuid.UUID
	cartID   uuid.UUID
	items    map[uuid.UUID]*models.CartItem
	products stubProducts
}

func newStubCartRepo(userID uuid.UUID, products stubProducts) *stubCartRepo {
	return &stubCartRepo{
		userID:   userID,
		cartID:   uuid.New(),
		items:    map[uuid.UUID]*models.CartItem{},
		products: products,
	}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return &models.Cart{ID: s.cartID, UserID: userID}, nil
}

func (s *stubCartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var out []models.CartItem
	for _, item := range s.items {
		out = append(out, s.withProduct(*item))
	}
	return out, nil
}

func (s *stubCartRepo) FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	for _, item := range s.items {
		if item.ProductID == productID {
			copied := s.withProduct(*item)
			return &copied, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func (s *stubCartRepo) FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error) {
	if userID != s.userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if item, ok := s.items[itemID]; ok {
		copied := s.withProduct(*item)
		return &copied, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
}

func (s *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) error {
	item.ID = uuid.New()
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *stubCartRepo) IncrementQuantity(ctx context.Context, itemID uuid.UUID) error {
	s.items[itemID].Quantity++
	return nil
}

func (s *stubCartRepo) DecrementQuantityAboveOne(ctx context.Context, itemID uuid.UUID) error {
	if s.items[itemID].Quantity > 1 {
		s.items[itemID].Quantity--
	}
	return nil
}

func (s *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	delete(s.items, itemID)
	return nil
}

func (s *stubCartRepo) withProduct(item models.CartItem) models.CartItem {
	if p, ok := s.products[item.ProductID]; ok {
		item.Product = *p
	}
	return item
}

package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  category_id TEXT NOT NULL,
  brand_id TEXT NOT NULL,
  size TEXT NOT NULL,
  external_page TEXT,
  created_at DATETIME
);`
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE(cart_id, product_id)
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(carts).Error)
	require.NoError(t, db.Exec(cartItems).Error)
	return db
}

// sqlite has no gen_random_uuid(), so rows are seeded with explicit ids.
func seedCart(t *testing.T, db *gorm.DB, userID uuid.UUID) models.Cart {
	t.Helper()

	cart := models.Cart{ID: uuid.New(), UserID: userID}
	require.NoError(t, db.Create(&cart).Error)
	return cart
}

func seedCartProduct(t *testing.T, db *gorm.DB, price string) models.Product {
	t.Helper()

	product := models.Product{
		ID:         uuid.New(),
		Name:       "Футболка",
		Price:      decimal.RequireFromString(price),
		Stock:      5,
		CategoryID: uuid.New(),
		BrandID:    uuid.New(),
		Size:       "M",
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestGetOrCreateByUserReturnsExisting(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	existing := seedCart(t, db, userID)

	got, err := repo.GetOrCreateByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
}

func TestIncrementAndDecrementQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	cart := seedCart(t, db, userID)
	product := seedCartProduct(t, db, "250.50")
	item := &models.CartItem{ID: uuid.New(), CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(ctx, item))

	require.NoError(t, repo.IncrementQuantity(ctx, item.ID))
	loaded, err := repo.FindItemForUser(ctx, item.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Quantity)

	require.NoError(t, repo.DecrementQuantityAboveOne(ctx, item.ID))
	require.NoError(t, repo.DecrementQuantityAboveOne(ctx, item.ID))
	loaded, err = repo.FindItemForUser(ctx, item.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Quantity, "decrement must stop at quantity 1")
}

func TestFindItemForUserScopesToOwner(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	owner := uuid.New()

	cart := seedCart(t, db, owner)
	product := seedCartProduct(t, db, "1000.00")
	item := &models.CartItem{ID: uuid.New(), CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(ctx, item))

	_, err := repo.FindItemForUser(ctx, item.ID, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	loaded, err := repo.FindItemForUser(ctx, item.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, product.ID, loaded.Product.ID)
	assert.Equal(t, "1000.00", loaded.Product.Price.StringFixed(2))
}

func TestDeleteItem(t *testing.T) {
	db := setupCartTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	cart := seedCart(t, db, userID)
	product := seedCartProduct(t, db, "99.90")
	item := &models.CartItem{ID: uuid.New(), CartID: cart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.CreateItem(ctx, item))

	require.NoError(t, repo.DeleteItem(ctx, item.ID))

	items, err := repo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/internal/repo"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
)

// Repository defines the persistence surface required by the cart service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	IncrementQuantity(ctx context.Context, itemID uuid.UUID) error
	DecrementQuantityAboveOne(ctx context.Context, itemID uuid.UUID) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds a GORM-backed cart repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{Base: r.Base.WithConn(tx)}
}

// GetOrCreateByUser returns the user's cart, creating an empty one on the
// first touch. Carts are unique per user.
func (r *gormRepository) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).First(&cart, "user_id = ?", userID).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	cart = models.Cart{UserID: userID}
	if err := r.DB(ctx).Create(&cart).Error; err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			// Lost the create race; the other writer's cart is ours to use.
			var existing models.Cart
			if ferr := r.DB(ctx).First(&existing, "user_id = ?", userID).Error; ferr == nil {
				return &existing, nil
			}
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	return &cart, nil
}

func (r *gormRepository) ListItems(ctx context.Context, cartID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.DB(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing cart items")
	}
	return items, nil
}

func (r *gormRepository) FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB(ctx).First(&item, "cart_id = ? AND product_id = ?", cartID, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
	}
	return &item, nil
}

// FindItemForUser resolves the item only when it belongs to the user's own
// cart, mirroring the ownership-scoped lookup of the storefront.
func (r *gormRepository) FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.DB(ctx).
		Preload("Product").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.id = ? AND carts.user_id = ?", itemID, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart item")
	}
	return &item, nil
}

func (r *gormRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart item")
	}
	return nil
}

// IncrementQuantity bumps the line atomically in SQL so concurrent adds of
// the same product never drop an increment.
func (r *gormRepository) IncrementQuantity(ctx context.Context, itemID uuid.UUID) error {
	err := r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity + 1")).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing cart item")
	}
	return nil
}

// DecrementQuantityAboveOne lowers the line by one but never below one; at
// quantity 1 the statement matches no rows and the call is a no-op.
func (r *gormRepository) DecrementQuantityAboveOne(ctx context.Context, itemID uuid.UUID) error {
	err := r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ? AND quantity > 1", itemID).
		UpdateColumn("quantity", gorm.Expr("quantity - 1")).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrementing cart item")
	}
	return nil
}

func (r *gormRepository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if err := r.DB(ctx).Delete(&models.CartItem{}, "id = ?", itemID).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting cart item")
	}
	return nil
}

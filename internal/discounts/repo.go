package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/internal/repo"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
)

// Repository defines the persistence surface required by the discount service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
	List(ctx context.Context) ([]models.Discount, error)
	ListActiveForProducts(ctx context.Context, productIDs []uuid.UUID, now time.Time) (map[uuid.UUID][]models.Discount, error)
	CountInStockProducts(ctx context.Context, discountID uuid.UUID) (int64, error)
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds a GORM-backed discount repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{Base: r.Base.WithConn(tx)}
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Discount, error) {
	var discount models.Discount
	err := r.DB(ctx).Preload("Products").First(&discount, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading discount")
	}
	return &discount, nil
}

func (r *gormRepository) List(ctx context.Context) ([]models.Discount, error) {
	var out []models.Discount
	err := r.DB(ctx).Preload("Products").Order("start_date DESC").Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing discounts")
	}
	return out, nil
}

// ListActiveForProducts returns the pricing-eligible discounts per product.
// Both the flag and the date window are enforced in SQL.
func (r *gormRepository) ListActiveForProducts(ctx context.Context, productIDs []uuid.UUID, now time.Time) (map[uuid.UUID][]models.Discount, error) {
	result := make(map[uuid.UUID][]models.Discount, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}

	type row struct {
		models.Discount
		ProductID uuid.UUID `gorm:"column:product_id"`
	}
	var rows []row
	err := r.DB(ctx).
		Table("discounts").
		Select("discounts.*, discount_products.product_id").
		Joins("JOIN discount_products ON discount_products.discount_id = discounts.id").
		Where("discount_products.product_id IN ?", productIDs).
		Where("discounts.active = ?", true).
		Where("discounts.start_date <= ? AND discounts.end_date >= ?", now, now).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing active discounts")
	}

	for _, rw := range rows {
		result[rw.ProductID] = append(result[rw.ProductID], rw.Discount)
	}
	return result, nil
}

func (r *gormRepository) CountInStockProducts(ctx context.Context, discountID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB(ctx).
		Table("products").
		Joins("JOIN discount_products ON discount_products.product_id = products.id").
		Where("discount_products.discount_id = ?", discountID).
		Where("products.stock > 0").
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting in-stock discounted products")
	}
	return count, nil
}

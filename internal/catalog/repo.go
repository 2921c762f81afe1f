package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/internal/repo"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/pagination"
)

// Repository defines the persistence surface required by the catalog service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error
	Aggregates(ctx context.Context) (*Aggregates, error)
	Newest(ctx context.Context, limit int) ([]models.Product, error)
	MostOrdered(ctx context.Context, limit int) ([]models.Product, error)
	TopActiveDiscounts(ctx context.Context, limit int) ([]models.Discount, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)
	ListTags(ctx context.Context) ([]models.Tag, error)
}

type gormRepository struct {
	repo.Base
}

// NewRepository builds a GORM-backed catalog repository.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) WithTx(tx *gorm.DB) Repository {
	return &gormRepository{Base: r.Base.WithConn(tx)}
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.DB(ctx).
		Preload("Category").
		Preload("Brand").
		Preload("Tags").
		First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return &product, nil
}

// List applies the filter and keyset pagination ordered by
// (created_at DESC, id DESC). The caller passes limit+1 to detect more pages.
func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	q := r.DB(ctx).
		Model(&models.Product{}).
		Preload("Category").
		Preload("Brand").
		Preload("Tags").
		Joins("JOIN categories ON categories.id = products.category_id").
		Joins("JOIN brands ON brands.id = products.brand_id")

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where(
			"products.name ILIKE ? OR products.description ILIKE ? OR brands.name ILIKE ?",
			like, like, like,
		)
	}
	if filter.CategoryName != "" {
		q = q.Where("categories.name = ?", filter.CategoryName)
	}
	if filter.PriceMin != nil {
		q = q.Where("products.price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		q = q.Where("products.price <= ?", *filter.PriceMax)
	}
	if filter.InStockOnly {
		q = q.Where("products.stock > 0")
	}
	if filter.Cursor != nil {
		q = q.Where(
			"(products.created_at, products.id) < (?, ?)",
			filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	limit := pagination.LimitWithBuffer(filter.Limit)

	var out []models.Product
	err := q.Order("products.created_at DESC, products.id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	return out, nil
}

func (r *gormRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.DB(ctx).Create(product).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return nil
}

func (r *gormRepository) Update(ctx context.Context, product *models.Product) error {
	err := r.DB(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":          product.Name,
			"description":   product.Description,
			"price":         product.Price,
			"stock":         product.Stock,
			"category_id":   product.CategoryID,
			"brand_id":      product.BrandID,
			"size":          product.Size,
			"external_page": product.ExternalPage,
		}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return nil
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.DB(ctx).Delete(&models.Product{}, "id = ?", id).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}
	return nil
}

func (r *gormRepository) ReplaceTags(ctx context.Context, productID uuid.UUID, tagIDs []uuid.UUID) error {
	tags := make([]models.Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		tags = append(tags, models.Tag{ID: id})
	}
	err := r.DB(ctx).
		Model(&models.Product{ID: productID}).
		Association("Tags").
		Replace(tags)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "replacing product tags")
	}
	return nil
}

func (r *gormRepository) Aggregates(ctx context.Context) (*Aggregates, error) {
	var totals struct {
		AveragePrice *float64 `gorm:"column:average_price"`
		TotalStock   *int64   `gorm:"column:total_stock"`
		ProductCount int64    `gorm:"column:product_count"`
	}
	err := r.DB(ctx).
		Model(&models.Product{}).
		Select("AVG(price) AS average_price, SUM(stock) AS total_stock, COUNT(*) AS product_count").
		Scan(&totals).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating catalog totals")
	}

	var byCategory []CategoryStat
	err = r.DB(ctx).
		Table("products").
		Select("categories.id AS category_id, categories.name AS category_name, COUNT(*) AS product_count, AVG(products.price) AS average_price").
		Joins("JOIN categories ON categories.id = products.category_id").
		Group("categories.id, categories.name").
		Order("categories.name ASC").
		Scan(&byCategory).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating per category")
	}

	out := &Aggregates{ProductCount: totals.ProductCount, ByCategory: byCategory}
	if totals.AveragePrice != nil {
		out.AveragePrice = decimalFromFloat(*totals.AveragePrice)
	}
	if totals.TotalStock != nil {
		out.TotalStock = *totals.TotalStock
	}
	return out, nil
}

func (r *gormRepository) Newest(ctx context.Context, limit int) ([]models.Product, error) {
	var out []models.Product
	err := r.DB(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing newest products")
	}
	return out, nil
}

// MostOrdered ranks products by how many order lines reference them.
func (r *gormRepository) MostOrdered(ctx context.Context, limit int) ([]models.Product, error) {
	var out []models.Product
	err := r.DB(ctx).
		Model(&models.Product{}).
		Select("products.*, COUNT(order_items.id) AS order_count").
		Joins("LEFT JOIN order_items ON order_items.product_id = products.id").
		Group("products.id").
		Order("order_count DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing popular products")
	}
	return out, nil
}

// TopActiveDiscounts returns the highest currently flagged discounts. The
// landing page filters on the flag only, like the original storefront.
func (r *gormRepository) TopActiveDiscounts(ctx context.Context, limit int) ([]models.Discount, error) {
	var out []models.Discount
	err := r.DB(ctx).
		Where("active = ?", true).
		Order("percent DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing top discounts")
	}
	return out, nil
}

func (r *gormRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	if err := r.DB(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing categories")
	}
	return out, nil
}

func (r *gormRepository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	var out []models.Brand
	if err := r.DB(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing brands")
	}
	return out, nil
}

func (r *gormRepository) ListTags(ctx context.Context) ([]models.Tag, error) {
	var out []models.Tag
	if err := r.DB(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing tags")
	}
	return out, nil
}

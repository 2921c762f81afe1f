package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
	"github.com/sportshoplabs/sportshop-backend/pkg/pagination"
)

// ListFilter narrows product listings. Zero values mean "no constraint".
type ListFilter struct {
	Search       string
	CategoryName string
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	InStockOnly  bool
	Limit        int
	Cursor       *pagination.Cursor
}

// ProductPage is one page of products plus the cursor for the next one.
type ProductPage struct {
	Products   []models.Product
	NextCursor string
}

// CreateProductInput captures a new catalog listing.
type CreateProductInput struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	CategoryID   uuid.UUID
	BrandID      uuid.UUID
	Size         enums.ProductSize
	ExternalPage *string
	TagIDs       []uuid.UUID
}

// UpdateProductInput carries the mutable product fields. Nil means "keep".
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Price        *decimal.Decimal
	Stock        *int
	CategoryID   *uuid.UUID
	BrandID      *uuid.UUID
	Size         *enums.ProductSize
	ExternalPage *string
}

// CategoryStat is the per-category product count.
type CategoryStat struct {
	CategoryID   uuid.UUID       `gorm:"column:category_id"`
	CategoryName string          `gorm:"column:category_name"`
	ProductCount int64           `gorm:"column:product_count"`
	AveragePrice decimal.Decimal `gorm:"column:average_price"`
}

// Aggregates summarizes the catalog for the back office.
type Aggregates struct {
	AveragePrice decimal.Decimal
	TotalStock   int64
	ProductCount int64
	ByCategory   []CategoryStat
}

func decimalFromFloat(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Storefront is the landing page payload: highlights plus the static site
// identity from configuration.
type Storefront struct {
	SiteTitle       string
	SiteHeader      string
	NewProducts     []models.Product
	PopularProducts []models.Product
	TopDiscounts    []models.Discount
	AveragePrice    decimal.Decimal
	Categories      []models.Category
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
)

// Product is the canonical catalog listing. Price is never negative and is
// stored as numeric(10,2); cart lines always read the live value while order
// lines freeze a copy at finalize time.
type Product struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string            `gorm:"column:name;not null"`
	Description  string            `gorm:"column:description;not null"`
	Price        decimal.Decimal   `gorm:"column:price;type:numeric(10,2);not null"`
	Stock        int               `gorm:"column:stock;not null;default:0"`
	CategoryID   uuid.UUID         `gorm:"column:category_id;type:uuid;not null"`
	Category     Category          `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	BrandID      uuid.UUID         `gorm:"column:brand_id;type:uuid;not null"`
	Brand        Brand             `gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE"`
	Size         enums.ProductSize `gorm:"column:size;not null"`
	ExternalPage *string           `gorm:"column:external_page"`
	Tags         []Tag             `gorm:"many2many:product_tags"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// InStock reports whether the product can be added to a cart.
func (p Product) InStock() bool {
	return p.Stock > 0
}

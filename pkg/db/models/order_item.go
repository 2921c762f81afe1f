package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one frozen line of an order. Price is copied from the product
// at finalize time and never tracks later catalog changes. The optional
// discount must belong to the product's discount set.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID  uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Product    Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Quantity   int             `gorm:"column:quantity;not null;default:1;check:quantity >= 1"`
	DiscountID *uuid.UUID      `gorm:"column:discount_id;type:uuid"`
	Discount   *Discount       `gorm:"foreignKey:DiscountID;constraint:OnDelete:SET NULL"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;default:0"`
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
)

// Order is a finalized purchase. Both totals are computed once at finalize
// time and persisted; reads never recompute them from the line items unless
// an explicit recompute is requested.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	User            User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	TotalPrice      decimal.Decimal   `gorm:"column:total_price;type:numeric(10,2);not null;default:0"`
	DiscountedTotal decimal.Decimal   `gorm:"column:discounted_total;type:numeric(10,2);not null;default:0"`
	InvoiceFile     *string           `gorm:"column:invoice_file"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

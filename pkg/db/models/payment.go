package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
)

// Payment records a settlement attempt against an order. TransactionID is
// unique and generated by the service when the caller leaves it empty.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Method        enums.PaymentMethod `gorm:"column:method;not null"`
	Status        enums.PaymentStatus `gorm:"column:status;not null;default:'pending'"`
	TransactionID string              `gorm:"column:transaction_id;not null;uniqueIndex"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a free-form product label.
type Tag struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"column:name;not null;uniqueIndex"`
}

// ProductTag is the explicit join between products and tags, carrying the
// attachment timestamp.
type ProductTag struct {
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"column:tag_id;type:uuid;primaryKey"`
	AddedAt   time.Time `gorm:"column:added_at;autoCreateTime"`
}

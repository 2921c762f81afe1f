package models

import "github.com/google/uuid"

// Brand is the product manufacturer reference.
type Brand struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"column:name;not null;uniqueIndex"`
}

package models

import "github.com/google/uuid"

// DefaultGroupName is assigned to every new account as an explicit step of
// registration (there is no implicit post-save hook in this codebase).
const DefaultGroupName = "customers"

// Group is an access group users belong to.
type Group struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"column:name;not null;uniqueIndex"`
}

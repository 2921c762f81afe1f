package models

import (
	"time"

	"github.com/google/uuid"
)

// Discount is a percentage price reduction attached to a set of products.
// It participates in pricing only while the active flag is set AND the
// current time falls inside [StartDate, EndDate].
type Discount struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Percent   int       `gorm:"column:percent;not null;check:percent >= 0 AND percent <= 100"`
	Active    bool      `gorm:"column:active;not null;default:true"`
	StartDate time.Time `gorm:"column:start_date;not null"`
	EndDate   time.Time `gorm:"column:end_date;not null"`
	Products  []Product `gorm:"many2many:discount_products"`
}

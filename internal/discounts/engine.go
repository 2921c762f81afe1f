package discounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/money"
)

// Status labels shown on the back-office listing. They are derived from the
// date window only; the active flag is not consulted here even though pricing
// requires it. The two checks disagree on purpose and must stay that way
// until product decides which one is authoritative.
const (
	StatusScheduled = "Запланирована"
	StatusActive    = "Активна"
	StatusFinished  = "Завершена"
)

// IsActive reports whether the discount participates in pricing at the given
// instant: the flag must be set and now must fall inside the date window
// (inclusive on both ends).
func IsActive(d models.Discount, now time.Time) bool {
	if !d.Active {
		return false
	}
	return !now.Before(d.StartDate) && !now.After(d.EndDate)
}

// StatusLabel classifies the discount by its date window alone.
func StatusLabel(d models.Discount, now time.Time) string {
	switch {
	case d.StartDate.After(now):
		return StatusScheduled
	case d.EndDate.Before(now):
		return StatusFinished
	default:
		return StatusActive
	}
}

// DurationDays returns the whole number of days the discount window spans.
func DurationDays(d models.Discount) int {
	return int(d.EndDate.Sub(d.StartDate).Hours() / 24)
}

// Apply returns the unit price after the percentage reduction, rounded to
// two decimal places.
func Apply(price decimal.Decimal, percent int) decimal.Decimal {
	return money.ApplyPercentOff(price, percent)
}

// ValidateMembership ensures the discount's product set contains the given
// product. Order lines may only carry discounts attached to their product.
func ValidateMembership(d models.Discount, productID uuid.UUID) error {
	for _, p := range d.Products {
		if p.ID == productID {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("discount %s does not apply to product %s", d.ID, productID))
}

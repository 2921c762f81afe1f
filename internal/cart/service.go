package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/money"
)

// Quantity update actions accepted by the legacy storefront widget.
const (
	ActionPlus  = "plus"
	ActionMinus = "minus"
)

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type discountLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
}

// Service exposes cart operations for the current user.
type Service interface {
	AddItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, action string) (*QuantityUpdate, error)
	Summary(ctx context.Context, userID uuid.UUID, discountID *uuid.UUID) (*Summary, error)
}

// QuantityUpdate carries the widget state after a plus/minus action.
type QuantityUpdate struct {
	Quantity int
	ItemSum  decimal.Decimal
	Total    decimal.Decimal
}

// Line is one cart row with its live total.
type Line struct {
	Item  models.CartItem
	Total decimal.Decimal
}

// Summary is the cart with totals recomputed from current product prices.
type Summary struct {
	CartID         uuid.UUID
	Lines          []Line
	TotalPrice     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal
	DiscountID     *uuid.UUID
}

type service struct {
	repo      Repository
	products  productLoader
	discounts discountLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, products productLoader, discounts discountLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if discounts == nil {
		return nil, fmt.Errorf("discount loader required")
	}
	return &service{repo: repo, products: products, discounts: discounts}, nil
}

// AddItem creates a quantity-1 line for the product or bumps the existing one.
func (s *service) AddItem(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItemByProduct(ctx, cart.ID, product.ID)
	typed := pkgerrors.As(err)
	switch {
	case err == nil:
		if err := s.repo.IncrementQuantity(ctx, item.ID); err != nil {
			return nil, err
		}
	case typed != nil && typed.Code() == pkgerrors.CodeNotFound:
		item = &models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1}
		if cerr := s.repo.CreateItem(ctx, item); cerr != nil {
			if pkgerrors.IsUniqueViolation(cerr) {
				// Concurrent add created the line first; fold into an increment.
				existing, ferr := s.repo.FindItemByProduct(ctx, cart.ID, product.ID)
				if ferr != nil {
					return nil, ferr
				}
				if ierr := s.repo.IncrementQuantity(ctx, existing.ID); ierr != nil {
					return nil, ierr
				}
				item = existing
			} else {
				return nil, cerr
			}
		}
	default:
		return nil, err
	}

	return s.repo.FindItemForUser(ctx, item.ID, userID)
}

// RemoveItem deletes the line when it belongs to the user's cart.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.repo.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		return err
	}
	return s.repo.DeleteItem(ctx, item.ID)
}

// UpdateQuantity applies the plus/minus widget action. "minus" at quantity 1
// is a silent no-op, never an error.
func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, action string) (*QuantityUpdate, error) {
	item, err := s.repo.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionPlus:
		if err := s.repo.IncrementQuantity(ctx, item.ID); err != nil {
			return nil, err
		}
	case ActionMinus:
		if err := s.repo.DecrementQuantityAboveOne(ctx, item.ID); err != nil {
			return nil, err
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be plus or minus")
	}

	item, err = s.repo.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, item.CartID)
	if err != nil {
		return nil, err
	}

	return &QuantityUpdate{
		Quantity: item.Quantity,
		ItemSum:  money.LineTotal(item.Product.Price, item.Quantity),
		Total:    cartTotal(items),
	}, nil
}

// Summary recomputes all line totals from live product prices. The optional
// discount is applied to the whole total; an unknown id means no discount.
func (s *service) Summary(ctx context.Context, userID uuid.UUID, discountID *uuid.UUID) (*Summary, error) {
	cart, err := s.repo.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, Line{
			Item:  item,
			Total: money.LineTotal(item.Product.Price, item.Quantity),
		})
	}
	total := cartTotal(items)

	summary := &Summary{
		CartID:         cart.ID,
		Lines:          lines,
		TotalPrice:     total,
		DiscountAmount: decimal.Zero,
		FinalPrice:     total,
	}

	if discountID == nil {
		return summary, nil
	}

	discount, err := s.discounts.GetByID(ctx, *discountID)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return summary, nil
		}
		return nil, err
	}

	summary.DiscountID = &discount.ID
	summary.DiscountAmount = money.PercentOf(total, discount.Percent)
	summary.FinalPrice = total.Sub(summary.DiscountAmount)
	return summary, nil
}

func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(money.LineTotal(item.Product.Price, item.Quantity))
	}
	return total
}

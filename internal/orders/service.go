package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sportshoplabs/sportshop-backend/internal/discounts"
	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
	"github.com/sportshoplabs/sportshop-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type discountLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Discount, error)
}

// LineInput is one requested order line. UnitPrice overrides the current
// product price when set; otherwise the live price is frozen into the line.
type LineInput struct {
	ProductID  uuid.UUID
	Quantity   int
	DiscountID *uuid.UUID
	UnitPrice  *decimal.Decimal
}

// Service exposes order finalization and lifecycle operations.
type Service interface {
	Finalize(ctx context.Context, userID uuid.UUID, lines []LineInput) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	Recompute(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	Get(ctx context.Context, orderID, userID uuid.UUID, staff bool) (*models.Order, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error)
	AttachInvoice(ctx context.Context, orderID uuid.UUID, fileRef string) error
}

type service struct {
	repo         Repository
	tx           txRunner
	products     productLoader
	discountRepo discountLoader
}

// NewService builds an order service backed by the provided stack.
func NewService(repo Repository, tx txRunner, products productLoader, discountRepo discountLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount loader required")
	}
	return &service{repo: repo, tx: tx, products: products, discountRepo: discountRepo}, nil
}

// Finalize prices every line, freezes the result, and persists the order
// atomically. Any invalid line aborts the whole operation; no partial order
// is ever written.
//
// Totals accumulate with two-digit rounding applied per line, not once at
// the end. Changing this would shift totals by a cent on real carts.
func (s *service) Finalize(ctx context.Context, userID uuid.UUID, lines []LineInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}

	order := &models.Order{
		UserID:          userID,
		Status:          enums.OrderStatusPending,
		TotalPrice:      decimal.Zero,
		DiscountedTotal: decimal.Zero,
	}

	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}

		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		unitPrice := product.Price
		if line.UnitPrice != nil {
			if line.UnitPrice.IsNegative() {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price override must be non-negative")
			}
			unitPrice = *line.UnitPrice
		}

		lineFinal := unitPrice
		item := models.OrderItem{
			ProductID: product.ID,
			Quantity:  line.Quantity,
			Price:     unitPrice,
		}

		if line.DiscountID != nil {
			discount, err := s.discountRepo.GetByID(ctx, *line.DiscountID)
			if err != nil {
				return nil, err
			}
			if err := discounts.ValidateMembership(*discount, product.ID); err != nil {
				return nil, err
			}
			lineFinal = discounts.Apply(unitPrice, discount.Percent)
			item.DiscountID = &discount.ID
		}

		order.TotalPrice = order.TotalPrice.Add(money.LineTotal(unitPrice, line.Quantity))
		order.DiscountedTotal = order.DiscountedTotal.Add(money.LineTotal(lineFinal, line.Quantity))
		order.Items = append(order.Items, item)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateStatus advances the order along pending -> shipped -> delivered.
// Any other transition is a state conflict.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, next); err != nil {
		return nil, err
	}
	order.Status = next
	return order, nil
}

// Recompute rebuilds both totals from the frozen lines on explicit request.
// Regular reads return the persisted totals untouched.
func (s *service) Recompute(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	discounted := decimal.Zero
	for _, item := range order.Items {
		lineFinal := item.Price
		if item.Discount != nil {
			lineFinal = discounts.Apply(item.Price, item.Discount.Percent)
		}
		total = total.Add(money.LineTotal(item.Price, item.Quantity))
		discounted = discounted.Add(money.LineTotal(lineFinal, item.Quantity))
	}

	if err := s.repo.UpdateTotals(ctx, orderID, total, discounted); err != nil {
		return nil, err
	}
	order.TotalPrice = total
	order.DiscountedTotal = discounted
	return order, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get returns the order scoped to its owner; staff may read any order.
func (s *service) Get(ctx context.Context, orderID, userID uuid.UUID, staff bool) (*models.Order, error) {
	if staff {
		return s.repo.GetByID(ctx, orderID)
	}
	return s.repo.GetByIDForUser(ctx, orderID, userID)
}

func (s *service) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Order, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order id is required")
	}
	return s.repo.ListByIDs(ctx, ids)
}

func (s *service) AttachInvoice(ctx context.Context, orderID uuid.UUID, fileRef string) error {
	if _, err := s.repo.GetByID(ctx, orderID); err != nil {
		return err
	}
	return s.repo.SetInvoiceFile(ctx, orderID, fileRef)
}

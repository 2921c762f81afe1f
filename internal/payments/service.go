package payments

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sportshoplabs/sportshop-backend/pkg/db/models"
	"github.com/sportshoplabs/sportshop-backend/pkg/enums"
	pkgerrors "github.com/sportshoplabs/sportshop-backend/pkg/errors"
)

type orderLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// CreateInput captures the payload for recording a payment attempt.
type CreateInput struct {
	OrderID       uuid.UUID
	Method        enums.PaymentMethod
	TransactionID string
}

// Service exposes payment recording and lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Payment, error)
	UpdateStatus(ctx context.Context, paymentID uuid.UUID, next enums.PaymentStatus) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

type service struct {
	repo   Repository
	orders orderLoader
	newID  func() string
}

// NewService builds a payment service backed by the provided stack.
func NewService(repo Repository, orders orderLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	return &service{
		repo:   repo,
		orders: orders,
		newID:  func() string { return uuid.NewString() },
	}, nil
}

// Create records a payment attempt against an existing order. A missing
// transaction id is filled with a generated one.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Payment, error) {
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method must be card, paypal or cash")
	}
	if _, err := s.orders.GetByID(ctx, input.OrderID); err != nil {
		return nil, err
	}

	txID := strings.TrimSpace(input.TransactionID)
	if txID == "" {
		txID = s.newID()
	}

	payment := &models.Payment{
		OrderID:       input.OrderID,
		Method:        input.Method,
		Status:        enums.PaymentStatusPending,
		TransactionID: txID,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// UpdateStatus resolves a pending payment to completed or failed.
func (s *service) UpdateStatus(ctx context.Context, paymentID uuid.UUID, next enums.PaymentStatus) (*models.Payment, error) {
	if next != enums.PaymentStatusCompleted && next != enums.PaymentStatusFailed {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment status must resolve to completed or failed")
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment already resolved as %s", payment.Status))
	}

	if err := s.repo.UpdateStatus(ctx, paymentID, next); err != nil {
		return nil, err
	}
	payment.Status = next
	return payment, nil
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListByOrder(ctx, orderID)
}

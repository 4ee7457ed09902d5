package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/pkg/clock"
	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/enums"
	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
)

// Service defines operations that record and aggregate ledger transactions.
type Service interface {
	Record(ctx context.Context, input RecordTransactionInput) (*models.Transaction, error)
	ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]models.Transaction, error)
	SummaryForUser(ctx context.Context, userID uuid.UUID) (*Summary, error)
	SummaryForReservation(ctx context.Context, reservationID uuid.UUID) (*Summary, error)
}

// RecordTransactionInput captures the immutable data a ledger transaction requires.
type RecordTransactionInput struct {
	ReservationID    uuid.UUID             `json:"reservation_id"`
	UserID           uuid.UUID             `json:"user_id"`
	Type             enums.TransactionType `json:"type"`
	AmountCents      int64                 `json:"amount_cents"`
	PaymentMethod    enums.PaymentMethod   `json:"payment_method"`
	PaymentReference *string               `json:"payment_reference,omitempty"`
}

// Summary aggregates a scope's transactions by type and status.
type Summary struct {
	Rows     []SummaryRow `json:"rows"`
	NetCents int64        `json:"net_cents"`
}

type service struct {
	repo Repository
	clk  clock.Clock
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if clk == nil {
		clk = clock.System()
	}
	return &service{repo: repo, clk: clk}, nil
}

// Record persists a transaction in completed status. The payment gateway is
// mocked as always-succeeding in this system; a real integration would start
// pending and settle asynchronously via Repository.Settle.
func (s *service) Record(ctx context.Context, input RecordTransactionInput) (*models.Transaction, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", input.Type))
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	transaction := &models.Transaction{
		ReservationID:    input.ReservationID,
		UserID:           input.UserID,
		Type:             input.Type,
		AmountCents:      input.AmountCents,
		Status:           enums.TransactionStatusCompleted,
		PaymentMethod:    input.PaymentMethod,
		PaymentReference: input.PaymentReference,
		TransactionDate:  s.clk.Now(),
	}

	if err := s.repo.Create(ctx, transaction); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
	}
	return transaction, nil
}

func (s *service) ListByReservation(ctx context.Context, reservationID uuid.UUID) ([]models.Transaction, error) {
	if reservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	transactions, err := s.repo.ListByReservationID(ctx, reservationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	return transactions, nil
}

func (s *service) SummaryForUser(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.summarize(ctx, SummaryScope{UserID: &userID})
}

func (s *service) SummaryForReservation(ctx context.Context, reservationID uuid.UUID) (*Summary, error) {
	if reservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	return s.summarize(ctx, SummaryScope{ReservationID: &reservationID})
}

func (s *service) summarize(ctx context.Context, scope SummaryScope) (*Summary, error) {
	rows, err := s.repo.SumByGroup(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate transactions")
	}

	summary := &Summary{Rows: rows}
	for _, row := range rows {
		if row.Status != enums.TransactionStatusCompleted {
			continue
		}
		if row.Type == enums.TransactionTypeRefund {
			summary.NetCents -= row.TotalCents
			continue
		}
		summary.NetCents += row.TotalCents
	}
	return summary, nil
}

package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/enums"
)

// Repository manages persistence for ledger transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, transaction *models.Transaction) error
	FindByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error)
	ListByReservationID(ctx context.Context, reservationID uuid.UUID) ([]models.Transaction, error)
	SumByGroup(ctx context.Context, scope SummaryScope) ([]SummaryRow, error)
	Settle(ctx context.Context, transactionID uuid.UUID, target enums.TransactionStatus, now time.Time) (bool, error)
}

// SummaryScope restricts aggregation to one user or one reservation.
type SummaryScope struct {
	UserID        *uuid.UUID
	ReservationID *uuid.UUID
}

// SummaryRow is one aggregated (type, status) bucket.
type SummaryRow struct {
	Type       enums.TransactionType   `json:"type"`
	Status     enums.TransactionStatus `json:"status"`
	TotalCents int64                   `json:"total_cents"`
	Count      int64                   `json:"count"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, transaction *models.Transaction) error {
	if transaction.ID == uuid.Nil {
		transaction.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *repository) FindByID(ctx context.Context, transactionID uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.WithContext(ctx).First(&transaction, "id = ?", transactionID).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *repository) ListByReservationID(ctx context.Context, reservationID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("reservation_id = ?", reservationID).
		Order("created_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *repository) SumByGroup(ctx context.Context, scope SummaryScope) ([]SummaryRow, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("type, status, SUM(amount_cents) AS total_cents, COUNT(*) AS count").
		Group("type, status").
		Order("type, status")
	if scope.UserID != nil {
		query = query.Where("user_id = ?", *scope.UserID)
	}
	if scope.ReservationID != nil {
		query = query.Where("reservation_id = ?", *scope.ReservationID)
	}

	var rows []SummaryRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Settle moves a pending transaction to its final status. The guard on the
// current status makes the transition one-shot.
func (r *repository) Settle(ctx context.Context, transactionID uuid.UUID, target enums.TransactionStatus, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transactionID, enums.TransactionStatusPending).
		Updates(map[string]any{
			"status":           target,
			"transaction_date": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

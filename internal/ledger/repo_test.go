package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/enums"
)

const transactionsDDL = `
CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  reservation_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_method TEXT NOT NULL,
  payment_reference TEXT,
  transaction_date DATETIME NOT NULL,
  created_at DATETIME
);`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(transactionsDDL).Error)
	return db
}

func seedTransaction(t *testing.T, db *gorm.DB, reservationID, userID uuid.UUID, txType enums.TransactionType, status enums.TransactionStatus, amount int64) uuid.UUID {
	t.Helper()
	transaction := &models.Transaction{
		ID:              uuid.New(),
		ReservationID:   reservationID,
		UserID:          userID,
		Type:            txType,
		AmountCents:     amount,
		Status:          status,
		PaymentMethod:   enums.PaymentMethodCard,
		TransactionDate: time.Now().UTC(),
	}
	require.NoError(t, db.Create(transaction).Error)
	return transaction.ID
}

func TestSumByGroupScopes(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reservationA := uuid.New()
	reservationB := uuid.New()
	user := uuid.New()
	otherUser := uuid.New()

	seedTransaction(t, db, reservationA, user, enums.TransactionTypeDeposit, enums.TransactionStatusCompleted, 60_000)
	seedTransaction(t, db, reservationA, user, enums.TransactionTypeRefund, enums.TransactionStatusCompleted, 30_000)
	seedTransaction(t, db, reservationB, user, enums.TransactionTypeDeposit, enums.TransactionStatusCompleted, 40_000)
	seedTransaction(t, db, reservationB, otherUser, enums.TransactionTypePayment, enums.TransactionStatusCompleted, 99_000)

	rows, err := repo.SumByGroup(ctx, SummaryScope{UserID: &user})
	if err != nil {
		t.Fatalf("sum by user: %v", err)
	}
	var depositTotal, depositCount int64
	for _, row := range rows {
		if row.Type == enums.TransactionTypeDeposit {
			depositTotal = row.TotalCents
			depositCount = row.Count
		}
		if row.Type == enums.TransactionTypePayment {
			t.Fatalf("other user's payment leaked into scope: %+v", row)
		}
	}
	if depositTotal != 100_000 || depositCount != 2 {
		t.Fatalf("expected deposits 100000 over 2 rows, got %d over %d", depositTotal, depositCount)
	}

	rows, err = repo.SumByGroup(ctx, SummaryScope{ReservationID: &reservationA})
	if err != nil {
		t.Fatalf("sum by reservation: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 buckets for reservation A, got %d", len(rows))
	}
}

func TestSettleIsOneShot(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	id := seedTransaction(t, db, uuid.New(), uuid.New(), enums.TransactionTypePayment, enums.TransactionStatusPending, 250_000)

	settled, err := repo.Settle(ctx, id, enums.TransactionStatusCompleted, now)
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if !settled {
		t.Fatal("expected first settle to apply")
	}

	settled, err = repo.Settle(ctx, id, enums.TransactionStatusFailed, now)
	if err != nil {
		t.Fatalf("second settle: %v", err)
	}
	if settled {
		t.Fatal("settle must not apply twice")
	}

	loaded, err := repo.FindByID(ctx, id)
	if err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if loaded.Status != enums.TransactionStatusCompleted {
		t.Fatalf("expected completed, got %s", loaded.Status)
	}
}

func TestListByReservationOrdered(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	reservationID := uuid.New()

	seedTransaction(t, db, reservationID, uuid.New(), enums.TransactionTypeDeposit, enums.TransactionStatusCompleted, 60_000)
	seedTransaction(t, db, reservationID, uuid.New(), enums.TransactionTypeRefund, enums.TransactionStatusCompleted, 30_000)
	seedTransaction(t, db, uuid.New(), uuid.New(), enums.TransactionTypeDeposit, enums.TransactionStatusCompleted, 10_000)

	transactions, err := repo.ListByReservationID(ctx, reservationID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(transactions))
	}
}

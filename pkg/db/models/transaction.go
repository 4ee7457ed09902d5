package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/pkg/enums"
)

// Transaction records an immutable monetary movement tied to a reservation.
// The ledger is append-only; only Status may change, exactly once,
// pending -> completed|failed.
type Transaction struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReservationID    uuid.UUID               `gorm:"column:reservation_id;type:uuid;not null"`
	UserID           uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	Type             enums.TransactionType   `gorm:"column:type;type:transaction_type;not null"`
	AmountCents      int64                   `gorm:"column:amount_cents;not null"`
	Status           enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'pending'"`
	PaymentMethod    enums.PaymentMethod     `gorm:"column:payment_method;type:payment_method;not null"`
	PaymentReference *string                 `gorm:"column:payment_reference"`
	TransactionDate  time.Time               `gorm:"column:transaction_date;not null"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
}

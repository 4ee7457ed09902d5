package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/pkg/enums"
)

// Reservation is a tenant's booking against a property. Rows are never
// deleted; terminal states are cancelled and completed.
type Reservation struct {
	ID                 uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PropertyID         uuid.UUID               `gorm:"column:property_id;type:uuid;not null"`
	TenantUserID       uuid.UUID               `gorm:"column:tenant_user_id;type:uuid;not null"`
	LandlordUserID     uuid.UUID               `gorm:"column:landlord_user_id;type:uuid;not null"`
	StartDate          time.Time               `gorm:"column:start_date;not null"`
	EndDate            *time.Time              `gorm:"column:end_date"`
	Status             enums.ReservationStatus `gorm:"column:status;type:reservation_status;not null;default:'pending'"`
	PaymentStatus      enums.PaymentStatus     `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	TotalAmountCents   int64                   `gorm:"column:total_amount_cents;not null"`
	DepositAmountCents int64                   `gorm:"column:deposit_amount_cents;not null"`
	CancelReason       *string                 `gorm:"column:cancel_reason"`
	Transactions       []Transaction           `gorm:"foreignKey:ReservationID"`
	CreatedAt          time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

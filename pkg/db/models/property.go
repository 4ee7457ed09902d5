package models

import (
	"time"

	"github.com/google/uuid"
)

// Property represents a rentable listing. Occupancy columns are the
// availability counters consumed by the reservation engine: current_occupancy
// only moves through the guarded reserve/release statements and never exceeds
// max_occupancy.
type Property struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LandlordUserID   uuid.UUID `gorm:"column:landlord_user_id;type:uuid;not null"`
	Title            string    `gorm:"column:title;type:text;not null"`
	MonthlyRentCents int64     `gorm:"column:monthly_rent_cents;not null"`
	DepositCents     int64     `gorm:"column:deposit_cents;not null"`
	MaxOccupancy     int       `gorm:"column:max_occupancy;not null;default:1"`
	CurrentOccupancy int       `gorm:"column:current_occupancy;not null;default:0"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/enums"
)

// CreateReservationInput captures a tenant's booking intent.
type CreateReservationInput struct {
	PropertyID   uuid.UUID
	TenantUserID uuid.UUID
	StartDate    time.Time
	EndDate      *time.Time
}

// ProcessPaymentInput carries the deposit payment details.
type ProcessPaymentInput struct {
	ReservationID    uuid.UUID
	PaymentMethod    enums.PaymentMethod
	PaymentReference *string
}

// CancelReservationInput carries the cancellation request.
type CancelReservationInput struct {
	ReservationID uuid.UUID
	Reason        string
}

// CancelResult reports the cancellation outcome to the caller.
type CancelResult struct {
	Reservation *models.Reservation `json:"reservation"`
	RefundCents int64               `json:"refund_cents"`
	Message     string              `json:"message"`
}

// ListParams configures cursor pagination for reservation listings.
type ListParams struct {
	TenantUserID uuid.UUID
	PropertyID   uuid.UUID
	Limit        int
	Cursor       string
}

// ListResult wraps returned reservations and the cursor for the next page.
type ListResult struct {
	Items  []models.Reservation `json:"items"`
	Cursor string               `json:"cursor"`
}

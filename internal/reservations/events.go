package reservations

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/enums"
)

// Lifecycle event names carried to the notification dispatcher.
const (
	EventReservationCreated   = "reservation.created"
	EventPaymentCompleted     = "payment.completed"
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationCancelled = "reservation.cancelled"
	EventReservationCompleted = "reservation.completed"
)

// Event describes one lifecycle transition for fan-out to affected users.
type Event struct {
	Name        string
	Type        enums.NotificationType
	Reservation *models.Reservation
	RefundCents int64
}

// recipient pairs a user with the text they should receive.
type recipient struct {
	userID  uuid.UUID
	title   string
	message string
}

func (e Event) metadata() map[string]any {
	meta := map[string]any{
		"event":          e.Name,
		"reservation_id": e.Reservation.ID.String(),
		"property_id":    e.Reservation.PropertyID.String(),
	}
	if e.Name == EventReservationCancelled {
		meta["refund_cents"] = e.RefundCents
	}
	return meta
}

func (e Event) recipients() []recipient {
	res := e.Reservation
	switch e.Name {
	case EventReservationCreated:
		return []recipient{
			{res.TenantUserID, "Reservation requested", "Your reservation request was received and is awaiting payment."},
			{res.LandlordUserID, "New reservation request", "A tenant requested a reservation for your property."},
		}
	case EventPaymentCompleted:
		return []recipient{
			{res.TenantUserID, "Deposit received", fmt.Sprintf("Your deposit of %s was received.", formatCents(res.DepositAmountCents))},
			{res.LandlordUserID, "Deposit paid", "The tenant paid the deposit for a pending reservation."},
		}
	case EventReservationConfirmed:
		return []recipient{
			{res.TenantUserID, "Reservation confirmed", "Your reservation is confirmed. See you at move-in."},
			{res.LandlordUserID, "Reservation confirmed", "A reservation for your property was confirmed and a slot is now occupied."},
		}
	case EventReservationCancelled:
		tenantMsg := "Your reservation was cancelled."
		if e.RefundCents > 0 {
			tenantMsg = fmt.Sprintf("Your reservation was cancelled and %s was refunded.", formatCents(e.RefundCents))
		}
		return []recipient{
			{res.TenantUserID, "Reservation cancelled", tenantMsg},
			{res.LandlordUserID, "Reservation cancelled", "A reservation for your property was cancelled."},
		}
	case EventReservationCompleted:
		return []recipient{
			{res.TenantUserID, "Stay completed", "Your stay is complete. Thanks for booking with us."},
			{res.LandlordUserID, "Stay completed", "A reservation for your property has been completed."},
		}
	default:
		return nil
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

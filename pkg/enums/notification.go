package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationReservationCreated   NotificationType = "reservation_created"
	NotificationPaymentCompleted     NotificationType = "payment_completed"
	NotificationReservationConfirmed NotificationType = "reservation_confirmed"
	NotificationReservationCancelled NotificationType = "reservation_cancelled"
	NotificationReservationCompleted NotificationType = "reservation_completed"
)

var validNotificationTypes = []NotificationType{
	NotificationReservationCreated,
	NotificationPaymentCompleted,
	NotificationReservationConfirmed,
	NotificationReservationCancelled,
	NotificationReservationCompleted,
}

// IsValid reports whether the value is a known NotificationType.
func (t NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

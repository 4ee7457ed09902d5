package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/enums"
	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
)

// Dispatcher fans lifecycle events out to affected users. Delivery is
// best-effort: callers log failures and never roll back the operation that
// triggered the event.
type Dispatcher interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType enums.NotificationType, title, message string, metadata map[string]any) error
}

type storeDispatcher struct {
	repo Repository
}

// NewDispatcher builds a dispatcher that persists in-app notifications.
func NewDispatcher(repo Repository) (Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &storeDispatcher{repo: repo}, nil
}

func (d *storeDispatcher) Notify(ctx context.Context, userID uuid.UUID, eventType enums.NotificationType, title, message string, metadata map[string]any) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if !eventType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid notification type %q", eventType))
	}
	if title == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}

	var payload json.RawMessage
	if len(metadata) > 0 {
		encoded, err := json.Marshal(metadata)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encode notification metadata")
		}
		payload = encoded
	}

	notification := &models.Notification{
		UserID:   userID,
		Type:     eventType,
		Title:    title,
		Message:  message,
		Metadata: payload,
	}
	if err := d.repo.Create(ctx, notification); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist notification")
	}
	return nil
}

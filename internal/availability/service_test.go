package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
)

func TestServiceGetReportsRemainingSlots(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	propertyID := seedProperty(t, db, 3, 1)

	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	view, err := svc.Get(context.Background(), propertyID)
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if view.MaxOccupancy != 3 || view.CurrentOccupancy != 1 || view.SlotsRemaining != 2 {
		t.Fatalf("unexpected availability view: %+v", view)
	}
}

func TestServiceGetValidatesID(t *testing.T) {
	t.Parallel()

	svc, err := NewService(NewRepository(newTestDB(t)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.Nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

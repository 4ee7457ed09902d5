package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
)

// Service exposes the read surface for property availability.
type Service interface {
	Get(ctx context.Context, propertyID uuid.UUID) (*PropertyAvailability, error)
}

// PropertyAvailability is the occupancy view over a property row.
type PropertyAvailability struct {
	PropertyID       uuid.UUID `json:"property_id"`
	MaxOccupancy     int       `json:"max_occupancy"`
	CurrentOccupancy int       `json:"current_occupancy"`
	SlotsRemaining   int       `json:"slots_remaining"`
}

type service struct {
	repo Repository
}

// NewService wires the availability read service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Get(ctx context.Context, propertyID uuid.UUID) (*PropertyAvailability, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	property, err := s.repo.FindProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	remaining := property.MaxOccupancy - property.CurrentOccupancy
	if remaining < 0 {
		remaining = 0
	}
	return &PropertyAvailability{
		PropertyID:       property.ID,
		MaxOccupancy:     property.MaxOccupancy,
		CurrentOccupancy: property.CurrentOccupancy,
		SlotsRemaining:   remaining,
	}, nil
}

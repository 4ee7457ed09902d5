package availability

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nestora/nestora-backend/pkg/db/models"
	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
)

// Repository exposes property reads and the occupancy movements the
// reservation engine relies on. Reserve and Release are single guarded
// statements so the capacity check and the counter change cannot be split
// across a read-then-write race.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error)
	Reserve(ctx context.Context, propertyID uuid.UUID) error
	Release(ctx context.Context, propertyID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an availability repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProperty(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	var property models.Property
	err := r.db.WithContext(ctx).First(&property, "id = ?", propertyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load property")
	}
	return &property, nil
}

// Reserve claims one occupancy slot. The check-and-increment happens in a
// single UPDATE so concurrent confirmations racing for the last slot cannot
// both succeed.
func (r *repository) Reserve(ctx context.Context, propertyID uuid.UUID) error {
	if propertyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE properties
		SET current_occupancy = current_occupancy + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_occupancy < max_occupancy
	`, propertyID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve occupancy slot")
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindProperty(ctx, propertyID); err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeCapacity, "property is at capacity")
	}
	return nil
}

// Release returns a previously claimed slot, floored at zero.
func (r *repository) Release(ctx context.Context, propertyID uuid.UUID) error {
	if propertyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE properties
		SET current_occupancy = current_occupancy - 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND current_occupancy > 0
	`, propertyID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release occupancy slot")
	}
	return nil
}

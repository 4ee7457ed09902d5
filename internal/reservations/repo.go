package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/pagination"
)

// Repository manages persistence for reservations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) error
	FindByID(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error)
	Update(ctx context.Context, reservationID uuid.UUID, updates map[string]any) error
	ListByTenant(ctx context.Context, params listReservationsParams) ([]models.Reservation, *pagination.Cursor, error)
	ListByProperty(ctx context.Context, params listReservationsParams) ([]models.Reservation, *pagination.Cursor, error)
}

type listReservationsParams struct {
	TenantUserID uuid.UUID
	PropertyID   uuid.UUID
	Limit        int
	Cursor       *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reservations repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reservation *models.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) FindByID(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", reservationID).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) Update(ctx context.Context, reservationID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", reservationID).
		Updates(updates).Error
}

func (r *repository) ListByTenant(ctx context.Context, params listReservationsParams) ([]models.Reservation, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("tenant_user_id = ?", params.TenantUserID)
	return r.list(ctx, query, params)
}

func (r *repository) ListByProperty(ctx context.Context, params listReservationsParams) ([]models.Reservation, *pagination.Cursor, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("property_id = ?", params.PropertyID)
	return r.list(ctx, query, params)
}

func (r *repository) list(_ context.Context, query *gorm.DB, params listReservationsParams) ([]models.Reservation, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var reservations []models.Reservation
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&reservations).Error; err != nil {
		return nil, nil, err
	}

	if len(reservations) > normalized {
		next := reservations[normalized]
		reservations = reservations[:normalized]
		return reservations, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return reservations, nil, nil
}

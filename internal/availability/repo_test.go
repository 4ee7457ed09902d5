package availability

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nestora/nestora-backend/pkg/db/models"
	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
)

const propertiesDDL = `
CREATE TABLE IF NOT EXISTS properties (
  id TEXT PRIMARY KEY,
  landlord_user_id TEXT NOT NULL,
  title TEXT NOT NULL,
  monthly_rent_cents INTEGER NOT NULL,
  deposit_cents INTEGER NOT NULL,
  max_occupancy INTEGER NOT NULL DEFAULT 1,
  current_occupancy INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:availability_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec(propertiesDDL).Error; err != nil {
		t.Fatalf("create properties table: %v", err)
	}
	return db
}

func seedProperty(t *testing.T, db *gorm.DB, maxOccupancy, currentOccupancy int) uuid.UUID {
	t.Helper()
	property := &models.Property{
		ID:               uuid.New(),
		LandlordUserID:   uuid.New(),
		Title:            "Studio on the hill",
		MonthlyRentCents: 180_000,
		DepositCents:     60_000,
		MaxOccupancy:     maxOccupancy,
		CurrentOccupancy: currentOccupancy,
	}
	if err := db.Create(property).Error; err != nil {
		t.Fatalf("seed property: %v", err)
	}
	return property.ID
}

func occupancy(t *testing.T, db *gorm.DB, propertyID uuid.UUID) int {
	t.Helper()
	var property models.Property
	if err := db.First(&property, "id = ?", propertyID).Error; err != nil {
		t.Fatalf("load property: %v", err)
	}
	return property.CurrentOccupancy
}

func TestReserveAndRelease(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	propertyID := seedProperty(t, db, 2, 0)

	if err := repo.Reserve(ctx, propertyID); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := repo.Reserve(ctx, propertyID); err != nil {
		t.Fatalf("reserve second slot: %v", err)
	}
	if got := occupancy(t, db, propertyID); got != 2 {
		t.Fatalf("expected occupancy 2, got %d", got)
	}

	err := repo.Reserve(ctx, propertyID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCapacity {
		t.Fatalf("expected capacity error, got %v", err)
	}

	if err := repo.Release(ctx, propertyID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := occupancy(t, db, propertyID); got != 1 {
		t.Fatalf("expected occupancy 1 after release, got %d", got)
	}
}

func TestReserveUnknownProperty(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)

	err := repo.Reserve(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReleaseFloorsAtZero(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	propertyID := seedProperty(t, db, 2, 0)

	if err := repo.Release(ctx, propertyID); err != nil {
		t.Fatalf("release at zero: %v", err)
	}
	if got := occupancy(t, db, propertyID); got != 0 {
		t.Fatalf("occupancy must never go negative, got %d", got)
	}
}

func TestConcurrentReservesRespectCapacity(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	propertyID := seedProperty(t, db, 3, 0)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			errs[slot] = repo.Reserve(ctx, propertyID)
		}(i)
	}
	wg.Wait()

	var succeeded, atCapacity int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeCapacity {
			atCapacity++
			continue
		}
		t.Fatalf("unexpected error: %v", err)
	}

	if succeeded != 3 {
		t.Fatalf("expected exactly 3 winners, got %d", succeeded)
	}
	if atCapacity != attempts-3 {
		t.Fatalf("expected %d capacity rejections, got %d", attempts-3, atCapacity)
	}
	if got := occupancy(t, db, propertyID); got != 3 {
		t.Fatalf("expected occupancy 3, got %d", got)
	}
}

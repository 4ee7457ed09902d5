package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/nestora/nestora-backend/internal/availability"
	"github.com/nestora/nestora-backend/internal/ledger"
	"github.com/nestora/nestora-backend/pkg/clock"
	"github.com/nestora/nestora-backend/pkg/db"
	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/enums"
	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
	"github.com/nestora/nestora-backend/pkg/logger"
	"github.com/nestora/nestora-backend/pkg/metrics"
	"github.com/nestora/nestora-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dispatcher interface {
	Notify(ctx context.Context, userID uuid.UUID, eventType enums.NotificationType, title, message string, metadata map[string]any) error
}

// Service owns the reservation state machine and orchestrates occupancy
// accounting, the transaction ledger, and lifecycle notifications.
type Service interface {
	Create(ctx context.Context, input CreateReservationInput) (*models.Reservation, error)
	ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*models.Reservation, error)
	Confirm(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error)
	Cancel(ctx context.Context, input CancelReservationInput) (*CancelResult, error)
	Complete(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error)
	Get(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error)
	ListByTenant(ctx context.Context, params ListParams) (*ListResult, error)
	ListByProperty(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	tx           txRunner
	repo         Repository
	availability availability.Repository
	ledgerRepo   ledger.Repository
	dispatcher   dispatcher
	clk          clock.Clock
	logg         *logger.Logger
	metrics      *metrics.LifecycleMetrics
}

// ServiceParams collects the service dependencies.
type ServiceParams struct {
	Tx           txRunner
	Repo         Repository
	Availability availability.Repository
	LedgerRepo   ledger.Repository
	Dispatcher   dispatcher
	Clock        clock.Clock
	Logger       *logger.Logger
	Metrics      *metrics.LifecycleMetrics
}

// NewService builds the reservation lifecycle service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if params.Availability == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if params.LedgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if params.Clock == nil {
		params.Clock = clock.System()
	}
	return &service{
		tx:           params.Tx,
		repo:         params.Repo,
		availability: params.Availability,
		ledgerRepo:   params.LedgerRepo,
		dispatcher:   params.Dispatcher,
		clk:          params.Clock,
		logg:         params.Logger,
		metrics:      params.Metrics,
	}, nil
}

// Create validates the booking intent and persists a pending reservation.
// Capacity is checked as an availability signal only; the slot itself is not
// claimed until confirmation, which is payment-gated.
func (s *service) Create(ctx context.Context, input CreateReservationInput) (*models.Reservation, error) {
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	if input.TenantUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant user id required")
	}
	now := s.clk.Now()
	if !input.StartDate.After(now) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start date must be in the future")
	}
	if input.EndDate != nil && !input.EndDate.After(input.StartDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date must be after start date")
	}

	var reservation *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		property, err := s.availability.WithTx(tx).FindProperty(ctx, input.PropertyID)
		if err != nil {
			return err
		}
		if property.CurrentOccupancy >= property.MaxOccupancy {
			return pkgerrors.New(pkgerrors.CodeCapacity, "property is at capacity")
		}

		reservation = &models.Reservation{
			PropertyID:         property.ID,
			TenantUserID:       input.TenantUserID,
			LandlordUserID:     property.LandlordUserID,
			StartDate:          input.StartDate,
			EndDate:            input.EndDate,
			Status:             enums.ReservationStatusPending,
			PaymentStatus:      enums.PaymentStatusPending,
			TotalAmountCents:   property.MonthlyRentCents,
			DepositAmountCents: property.DepositCents,
		}
		if err := s.repo.WithTx(tx).Create(ctx, reservation); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "reservation already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
		}
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("create")
		return nil, err
	}

	s.metrics.IncSuccess("create")
	s.emit(ctx, Event{Name: EventReservationCreated, Type: enums.NotificationReservationCreated, Reservation: reservation})
	return reservation, nil
}

// ProcessPayment collects the deposit for a pending reservation. A second
// attempt on an already-paid reservation fails instead of double-charging.
func (s *service) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*models.Reservation, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	var reservation *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		reservation, err = s.load(ctx, s.repo.WithTx(tx), input.ReservationID)
		if err != nil {
			return err
		}
		if reservation.PaymentStatus == enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeConflict, "reservation already paid")
		}
		if reservation.Status != enums.ReservationStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment allowed only while reservation is pending")
		}

		deposit := &models.Transaction{
			ReservationID:    reservation.ID,
			UserID:           reservation.TenantUserID,
			Type:             enums.TransactionTypeDeposit,
			AmountCents:      reservation.DepositAmountCents,
			Status:           enums.TransactionStatusCompleted,
			PaymentMethod:    input.PaymentMethod,
			PaymentReference: input.PaymentReference,
			TransactionDate:  s.clk.Now(),
		}
		if err := s.ledgerRepo.WithTx(tx).Create(ctx, deposit); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record deposit")
		}

		if err := s.repo.WithTx(tx).Update(ctx, reservation.ID, map[string]any{
			"payment_status": enums.PaymentStatusPaid,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
		}
		reservation.PaymentStatus = enums.PaymentStatusPaid
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("payment")
		return nil, err
	}

	s.metrics.IncSuccess("payment")
	s.emit(ctx, Event{Name: EventPaymentCompleted, Type: enums.NotificationPaymentCompleted, Reservation: reservation})
	return reservation, nil
}

// Confirm claims an occupancy slot for a paid pending reservation. On a
// capacity failure the reservation stays pending so the caller may retry or
// cancel.
func (s *service) Confirm(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	if reservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	var reservation *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		reservation, err = s.load(ctx, s.repo.WithTx(tx), reservationID)
		if err != nil {
			return err
		}
		if reservation.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is in a terminal state")
		}
		if reservation.Status != enums.ReservationStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is already confirmed")
		}
		if reservation.PaymentStatus != enums.PaymentStatusPaid {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "deposit payment required before confirmation")
		}

		if err := s.availability.WithTx(tx).Reserve(ctx, reservation.PropertyID); err != nil {
			return err
		}

		if err := s.repo.WithTx(tx).Update(ctx, reservation.ID, map[string]any{
			"status": enums.ReservationStatusConfirmed,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
		}
		reservation.Status = enums.ReservationStatusConfirmed
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("confirm")
		return nil, err
	}

	s.metrics.IncSuccess("confirm")
	s.emit(ctx, Event{Name: EventReservationConfirmed, Type: enums.NotificationReservationConfirmed, Reservation: reservation})
	return reservation, nil
}

// Cancel terminates a pending or confirmed reservation, releasing the
// occupancy slot and refunding the deposit per the refund policy.
func (s *service) Cancel(ctx context.Context, input CancelReservationInput) (*CancelResult, error) {
	if input.ReservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	var (
		reservation *models.Reservation
		refundCents int64
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		reservation, err = s.load(ctx, s.repo.WithTx(tx), input.ReservationID)
		if err != nil {
			return err
		}
		if reservation.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "reservation is in a terminal state")
		}

		wasConfirmed := reservation.Status == enums.ReservationStatusConfirmed

		// The refundable base is zero until confirmation: a pending
		// cancellation never had a slot held against it.
		refundable := int64(0)
		if wasConfirmed {
			refundable = reservation.DepositAmountCents
		}
		refundCents = ComputeRefund(refundable, reservation.PaymentStatus, reservation.StartDate, s.clk.Now())

		updates := map[string]any{
			"status":        enums.ReservationStatusCancelled,
			"cancel_reason": input.Reason,
		}

		if refundCents > 0 && reservation.PaymentStatus == enums.PaymentStatusPaid {
			refund := &models.Transaction{
				ReservationID:   reservation.ID,
				UserID:          reservation.TenantUserID,
				Type:            enums.TransactionTypeRefund,
				AmountCents:     refundCents,
				Status:          enums.TransactionStatusCompleted,
				PaymentMethod:   enums.PaymentMethodBankTransfer,
				TransactionDate: s.clk.Now(),
			}
			if err := s.ledgerRepo.WithTx(tx).Create(ctx, refund); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record refund")
			}
			updates["payment_status"] = enums.PaymentStatusRefunded
			reservation.PaymentStatus = enums.PaymentStatusRefunded
		}

		if wasConfirmed {
			if err := s.availability.WithTx(tx).Release(ctx, reservation.PropertyID); err != nil {
				return err
			}
		}

		if err := s.repo.WithTx(tx).Update(ctx, reservation.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
		}
		reservation.Status = enums.ReservationStatusCancelled
		reason := input.Reason
		reservation.CancelReason = &reason
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("cancel")
		return nil, err
	}

	s.metrics.IncSuccess("cancel")
	s.metrics.ObserveRefund(refundCents)
	s.emit(ctx, Event{Name: EventReservationCancelled, Type: enums.NotificationReservationCancelled, Reservation: reservation, RefundCents: refundCents})

	return &CancelResult{
		Reservation: reservation,
		RefundCents: refundCents,
		Message:     cancelMessage(reservation, refundCents),
	}, nil
}

// Complete marks a confirmed reservation as finished. The slot was already
// counted at confirmation, so completion changes no occupancy.
func (s *service) Complete(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	if reservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}

	var reservation *models.Reservation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		reservation, err = s.load(ctx, s.repo.WithTx(tx), reservationID)
		if err != nil {
			return err
		}
		if !reservation.Status.CanTransitionTo(enums.ReservationStatusCompleted) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only confirmed reservations can be completed")
		}
		if reservation.EndDate != nil && s.clk.Now().Before(*reservation.EndDate) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "stay has not ended yet")
		}

		if err := s.repo.WithTx(tx).Update(ctx, reservation.ID, map[string]any{
			"status": enums.ReservationStatusCompleted,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
		}
		reservation.Status = enums.ReservationStatusCompleted
		return nil
	})
	if err != nil {
		s.metrics.IncFailure("complete")
		return nil, err
	}

	s.metrics.IncSuccess("complete")
	s.emit(ctx, Event{Name: EventReservationCompleted, Type: enums.NotificationReservationCompleted, Reservation: reservation})
	return reservation, nil
}

func (s *service) Get(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	if reservationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation id required")
	}
	return s.load(ctx, s.repo, reservationID)
}

func (s *service) ListByTenant(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.TenantUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant user id required")
	}
	query, err := buildListQuery(params)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListByTenant(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return buildListResult(rows, next), nil
}

func (s *service) ListByProperty(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	query, err := buildListQuery(params)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListByProperty(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return buildListResult(rows, next), nil
}

func (s *service) load(ctx context.Context, repo Repository, reservationID uuid.UUID) (*models.Reservation, error) {
	reservation, err := repo.FindByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return reservation, nil
}

// emit fans the event out to the tenant and the landlord. Dispatch is a
// best-effort side channel: failures are logged and never surfaced to the
// lifecycle operation that produced the event.
func (s *service) emit(ctx context.Context, event Event) {
	var errs error
	meta := event.metadata()
	for _, rcpt := range event.recipients() {
		if err := s.dispatcher.Notify(ctx, rcpt.userID, event.Type, rcpt.title, rcpt.message, meta); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"event":          event.Name,
			"reservation_id": event.Reservation.ID.String(),
		})
		s.logg.Error(logCtx, "notification dispatch failed", errs)
	}
}

func cancelMessage(reservation *models.Reservation, refundCents int64) string {
	switch {
	case refundCents > 0 && refundCents == reservation.DepositAmountCents:
		return "reservation cancelled; full deposit refunded"
	case refundCents > 0:
		return "reservation cancelled; half of the deposit refunded"
	case reservation.PaymentStatus == enums.PaymentStatusPaid:
		return "reservation cancelled; cancellation window passed, no refund due"
	default:
		return "reservation cancelled; no payment was collected"
	}
}

func buildListQuery(params ListParams) (listReservationsParams, error) {
	query := listReservationsParams{
		TenantUserID: params.TenantUserID,
		PropertyID:   params.PropertyID,
		Limit:        params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return listReservationsParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	return query, nil
}

func buildListResult(rows []models.Reservation, next *pagination.Cursor) *ListResult {
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}
}

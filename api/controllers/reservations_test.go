package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/api/middleware"
	"github.com/nestora/nestora-backend/internal/reservations"
	"github.com/nestora/nestora-backend/pkg/db/models"
	"github.com/nestora/nestora-backend/pkg/enums"
	"github.com/nestora/nestora-backend/pkg/logger"
)

type testReservationsService struct {
	createFn  func(ctx context.Context, input reservations.CreateReservationInput) (*models.Reservation, error)
	paymentFn func(ctx context.Context, input reservations.ProcessPaymentInput) (*models.Reservation, error)
	cancelFn  func(ctx context.Context, input reservations.CancelReservationInput) (*reservations.CancelResult, error)
}

func (s *testReservationsService) Create(ctx context.Context, input reservations.CreateReservationInput) (*models.Reservation, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &models.Reservation{}, nil
}

func (s *testReservationsService) ProcessPayment(ctx context.Context, input reservations.ProcessPaymentInput) (*models.Reservation, error) {
	if s.paymentFn != nil {
		return s.paymentFn(ctx, input)
	}
	return &models.Reservation{}, nil
}

func (s *testReservationsService) Confirm(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	return &models.Reservation{ID: reservationID, Status: enums.ReservationStatusConfirmed}, nil
}

func (s *testReservationsService) Cancel(ctx context.Context, input reservations.CancelReservationInput) (*reservations.CancelResult, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, input)
	}
	return &reservations.CancelResult{}, nil
}

func (s *testReservationsService) Complete(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	return &models.Reservation{ID: reservationID, Status: enums.ReservationStatusCompleted}, nil
}

func (s *testReservationsService) Get(ctx context.Context, reservationID uuid.UUID) (*models.Reservation, error) {
	return &models.Reservation{ID: reservationID}, nil
}

func (s *testReservationsService) ListByTenant(ctx context.Context, params reservations.ListParams) (*reservations.ListResult, error) {
	return &reservations.ListResult{}, nil
}

func (s *testReservationsService) ListByProperty(ctx context.Context, params reservations.ListParams) (*reservations.ListResult, error) {
	return &reservations.ListResult{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withUser(req *http.Request, userID uuid.UUID) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func withReservationParam(req *http.Request, reservationID uuid.UUID) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("reservationId", reservationID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestCreateReservationSuccess(t *testing.T) {
	tenantID := uuid.New()
	propertyID := uuid.New()
	start := time.Now().Add(240 * time.Hour).UTC()

	var captured reservations.CreateReservationInput
	svc := &testReservationsService{
		createFn: func(ctx context.Context, input reservations.CreateReservationInput) (*models.Reservation, error) {
			captured = input
			return &models.Reservation{ID: uuid.New(), PropertyID: input.PropertyID, TenantUserID: input.TenantUserID, Status: enums.ReservationStatusPending}, nil
		},
	}

	body := `{"property_id":"` + propertyID.String() + `","start_date":"` + start.Format(time.RFC3339) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	req = withUser(req, tenantID)

	resp := httptest.NewRecorder()
	CreateReservation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.PropertyID != propertyID {
		t.Fatalf("property id not passed through: %s", captured.PropertyID)
	}
	if captured.TenantUserID != tenantID {
		t.Fatalf("tenant id must come from the request identity, got %s", captured.TenantUserID)
	}
}

func TestCreateReservationRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{"property_id":"x","surprise":true}`))
	req = withUser(req, uuid.New())

	resp := httptest.NewRecorder()
	CreateReservation(&testReservationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestCreateReservationRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{}`))

	resp := httptest.NewRecorder()
	CreateReservation(&testReservationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestProcessReservationPaymentRejectsBadMethod(t *testing.T) {
	reservationID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/"+reservationID.String()+"/payment",
		strings.NewReader(`{"payment_method":"barter"}`))
	req = withUser(req, uuid.New())
	req = withReservationParam(req, reservationID)

	resp := httptest.NewRecorder()
	ProcessReservationPayment(&testReservationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCancelReservationReturnsRefund(t *testing.T) {
	reservationID := uuid.New()
	svc := &testReservationsService{
		cancelFn: func(ctx context.Context, input reservations.CancelReservationInput) (*reservations.CancelResult, error) {
			if input.ReservationID != reservationID {
				t.Fatalf("unexpected reservation %s", input.ReservationID)
			}
			if input.Reason != "moving abroad" {
				t.Fatalf("unexpected reason %q", input.Reason)
			}
			return &reservations.CancelResult{
				Reservation: &models.Reservation{ID: reservationID, Status: enums.ReservationStatusCancelled},
				RefundCents: 50_000,
				Message:     "reservation cancelled; half of the deposit refunded",
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/"+reservationID.String()+"/cancel",
		strings.NewReader(`{"reason":"moving abroad"}`))
	req = withUser(req, uuid.New())
	req = withReservationParam(req, reservationID)

	resp := httptest.NewRecorder()
	CancelReservation(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data struct {
			RefundCents int64 `json:"refund_cents"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.RefundCents != 50_000 {
		t.Fatalf("expected refund 50000, got %d", envelope.Data.RefundCents)
	}
}

func TestGetReservationRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reservations/not-a-uuid", nil)
	req = withUser(req, uuid.New())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("reservationId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	GetReservation(&testReservationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

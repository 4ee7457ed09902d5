package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/api/responses"
	"github.com/nestora/nestora-backend/internal/ledger"
	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
	"github.com/nestora/nestora-backend/pkg/logger"
)

// TransactionsSummary aggregates the acting user's ledger. Passing a
// reservation_id query scopes the summary to that reservation instead.
func TransactionsSummary(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("reservation_id")); raw != "" {
			reservationID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation id"))
				return
			}
			summary, err := svc.SummaryForReservation(r.Context(), reservationID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, summary)
			return
		}

		userID, err := actingUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.SummaryForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

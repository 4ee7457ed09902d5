package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nestora/nestora-backend/api/responses"
	"github.com/nestora/nestora-backend/internal/availability"
	pkgerrors "github.com/nestora/nestora-backend/pkg/errors"
	"github.com/nestora/nestora-backend/pkg/logger"
)

// PropertyAvailability reports occupancy and remaining slots for a property.
func PropertyAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "propertyId"))
		if raw == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "property id is required"))
			return
		}
		propertyID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid property id"))
			return
		}

		result, err := svc.Get(r.Context(), propertyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

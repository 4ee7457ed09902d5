package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nestora/nestora-backend/api/controllers"
	"github.com/nestora/nestora-backend/api/middleware"
	"github.com/nestora/nestora-backend/internal/availability"
	"github.com/nestora/nestora-backend/internal/ledger"
	"github.com/nestora/nestora-backend/internal/notifications"
	"github.com/nestora/nestora-backend/internal/reservations"
	"github.com/nestora/nestora-backend/pkg/config"
	"github.com/nestora/nestora-backend/pkg/db"
	"github.com/nestora/nestora-backend/pkg/logger"
	"github.com/nestora/nestora-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
	reservationsService reservations.Service,
	ledgerService ledger.Service,
	availabilityService availability.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(logg))
		r.Use(middleware.Idempotency(cfg.Idempotency, redisClient, logg))

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", controllers.CreateReservation(reservationsService, logg))
			r.Get("/", controllers.ListMyReservations(reservationsService, logg))
			r.Route("/{reservationId}", func(r chi.Router) {
				r.Get("/", controllers.GetReservation(reservationsService, logg))
				r.Post("/payment", controllers.ProcessReservationPayment(reservationsService, logg))
				r.Post("/confirm", controllers.ConfirmReservation(reservationsService, logg))
				r.Post("/cancel", controllers.CancelReservation(reservationsService, logg))
				r.Post("/complete", controllers.CompleteReservation(reservationsService, logg))
				r.Get("/transactions", controllers.ListReservationTransactions(ledgerService, logg))
			})
		})

		r.Get("/transactions/summary", controllers.TransactionsSummary(ledgerService, logg))

		r.Route("/properties/{propertyId}", func(r chi.Router) {
			r.Get("/availability", controllers.PropertyAvailability(availabilityService, logg))
			r.Get("/reservations", controllers.ListPropertyReservations(reservationsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}

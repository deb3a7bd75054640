package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almaluz/backend/internal/accounts"
	"github.com/almaluz/backend/internal/backup"
	"github.com/almaluz/backend/internal/catalog"
	"github.com/almaluz/backend/internal/notifier"
	"github.com/almaluz/backend/internal/settings"
	"github.com/almaluz/backend/internal/templates"
	"github.com/almaluz/backend/pkg/health"
)

// Deps carries everything the HTTP handlers need.
type Deps struct {
	Log        *slog.Logger
	AdminToken string

	Templates *templates.Repository
	Settings  *settings.Repository
	Products  *catalog.Repository
	Profiles  *accounts.Repository
	Backups   *backup.Service
	Notifier  *notifier.Service
	Health    health.Checks
}

type handlers struct {
	Deps
}

// NewRouter builds the full route tree with middleware applied.
func NewRouter(deps Deps) http.Handler {
	h := &handlers{Deps: deps}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recover(deps.Log))
	r.Use(RequestLogger(deps.Log))

	r.Get("/healthz", health.LivenessHandler())
	r.Get("/readyz", health.ReadinessHandler(deps.Health, health.WithLogger(deps.Log)))

	r.Route("/api", func(r chi.Router) {
		r.Post("/contact", h.contactForm)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuth(deps.AdminToken))

			r.Route("/notifications", func(r chi.Router) {
				r.Post("/order-confirmation", h.notifyOrderConfirmation)
				r.Post("/order-shipped", h.notifyOrderShipped)
				r.Post("/order-delivered", h.notifyOrderDelivered)
				r.Post("/payment-success", h.notifyPaymentSuccess)
				r.Post("/payment-failed", h.notifyPaymentFailed)
				r.Post("/welcome", h.notifyWelcome)
				r.Post("/password-reset", h.notifyPasswordReset)
				r.Post("/membership-welcome", h.notifyMembershipWelcome)
				r.Post("/membership-reminder", h.notifyMembershipReminder)
				r.Post("/low-stock", h.notifyLowStock)
				r.Post("/marketing", h.notifyMarketing)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/metrics", h.metrics)

				r.Route("/templates", func(r chi.Router) {
					r.Get("/", h.listTemplates)
					r.Post("/", h.createTemplate)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.getTemplate)
						r.Put("/", h.updateTemplate)
						r.Delete("/", h.deleteTemplate)
						r.Post("/activate", h.activateTemplate)
						r.Post("/deactivate", h.deactivateTemplate)
						r.Post("/test-send", h.testSendTemplate)
					})
				})

				r.Route("/config", func(r chi.Router) {
					r.Get("/", h.listSettings)
					r.Get("/{key}", h.getSetting)
					r.Put("/{key}", h.putSetting)
				})

				r.Route("/backups", func(r chi.Router) {
					r.Get("/", h.listBackups)
					r.Post("/", h.createBackup)
					r.Post("/{id}/restore", h.restoreBackup)
					r.Delete("/{id}", h.deleteBackup)
				})

				r.Route("/products", func(r chi.Router) {
					r.Get("/export", h.exportProducts)
					r.Post("/import", h.importProducts)
					r.Post("/bulk-active", h.bulkSetActive)
					r.Post("/bulk-prices", h.bulkAdjustPrices)
				})
			})
		})
	})

	return r
}

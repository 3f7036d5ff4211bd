package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/nexthealth/careplatform/internal/auth"
	"github.com/nexthealth/careplatform/internal/employment"
	"github.com/nexthealth/careplatform/internal/metrics"
	"github.com/nexthealth/careplatform/internal/notification"
	"github.com/nexthealth/careplatform/internal/transport/middleware"
	"github.com/nexthealth/careplatform/internal/transport/swagger"
	"github.com/nexthealth/careplatform/internal/user"
)

type Handlers struct {
	Auth         *auth.Handler
	Employment   *employment.Handler
	User         *user.Handler
	Notification *notification.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, guard *auth.Guard, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logging(logger))
	router.Use(metrics.Instrument)

	router.Handle("/metrics", metrics.Handler())

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/register", h.Auth.Register)

			// Session-scoped auth routes
			sr.Group(func(pr chi.Router) {
				pr.Use(guard.Authenticate)
				pr.Post("/change-password", h.Auth.ChangePassword)
				pr.Route("/2fa", func(tr chi.Router) {
					tr.Post("/setup", h.Auth.TwoFactorSetup)
					tr.Post("/verify", h.Auth.TwoFactorVerify)
					tr.Post("/disable", h.Auth.TwoFactorDisable)
					tr.Post("/validate", h.Auth.TwoFactorValidate)
					tr.Get("/status", h.Auth.TwoFactorStatus)
				})
			})
		})

		r.Group(func(pr chi.Router) {
			pr.Use(guard.Authenticate)

			pr.Get("/employments/me", h.Employment.ListMine)
			pr.Get("/notifications", h.Notification.List)
			pr.Patch("/notifications/{id}/read", h.Notification.MarkRead)

			// Tenant-scoped administration
			pr.Group(func(tr chi.Router) {
				tr.Use(guard.RequireTenant)

				tr.Group(func(er chi.Router) {
					er.Use(guard.RequirePermissions("employments.update", "employees.update"))
					er.Patch("/employments/{id}/decide", h.Employment.Decide)
					er.Patch("/employments/{id}", h.Employment.Update)
					er.Delete("/employments/{id}", h.Employment.Deactivate)
				})
				tr.Group(func(er chi.Router) {
					er.Use(guard.RequirePermissions("employments.create", "employees.create"))
					er.Post("/employments/invite", h.Employment.Invite)
					er.Post("/users/{userID}/employments", h.Employment.Create)
				})

				tr.Group(func(ur chi.Router) {
					ur.Use(guard.RequirePermissions("employees.update", "employees.view"))
					ur.Get("/users/{userID}/employments", h.Employment.ListForUser)
				})
				tr.Group(func(ur chi.Router) {
					ur.Use(guard.RequirePermissions("employees.update"))
					ur.Post("/users/{userID}/reset-password", h.User.ResetPassword)
					ur.Post("/users/{userID}/reset-2fa", h.User.ResetTwoFactor)
				})
			})
		})
	})
}

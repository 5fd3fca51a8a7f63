package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carebridge/clinic-backend/internal/auth"
	"github.com/carebridge/clinic-backend/internal/identity"
	"github.com/carebridge/clinic-backend/internal/profile"
	"github.com/carebridge/clinic-backend/internal/schedule"
	"github.com/carebridge/clinic-backend/internal/setup"
)

type RouterConfig struct {
	Identity *identity.Service
	Profiles *profile.Store
	Schedule *schedule.Service
	Setup    *setup.Service
	Signer   *auth.TokenSigner
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Logger   zerolog.Logger
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Public: self-service registration and login
	r.Post("/auth/register", registerHandler(cfg.Identity))
	r.Post("/auth/login", loginHandler(cfg.Identity))

	// Public: one-time admin bootstrap
	r.Route("/admin-setup", func(r chi.Router) {
		r.Get("/status", setupStatusHandler(cfg.Setup))
		r.Post("/generate-token", generateSetupTokenHandler(cfg.Setup))
		r.Post("/validate-token", validateSetupTokenHandler(cfg.Setup))
		r.Post("/register", registerAdminHandler(cfg.Setup))
		// refused outside development mode
		r.Post("/reset-dev", resetDevSetupHandler(cfg.Setup))
	})

	// Everything below requires a session token
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(cfg.Signer))

		r.Get("/user/profile", ownProfileHandler(cfg.Identity))
		r.Get("/roles/my-role", myRoleHandler())
		r.Get("/roles/valid-roles", validRolesHandler())

		r.Get("/profiles/{role}/{uid}", getProfileHandler(cfg.Profiles))
		r.Patch("/profiles/{role}/{uid}", updateProfileHandler(cfg.Profiles))

		r.Get("/doctors/{id}/slots", listDoctorSlotsHandler(cfg.Schedule))

		// Role management is admin-only
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(identity.RoleAdmin))

			r.Post("/roles/set", setRoleHandler(cfg.Identity))
			r.Get("/roles/get/{uid}", getRoleHandler(cfg.Identity))
			r.Delete("/roles/remove/{uid}", removeRoleHandler(cfg.Identity))
			r.Post("/roles/create-user", createUserHandler(cfg.Identity))
			r.Get("/roles/list/{role}", listUsersByRoleHandler(cfg.Identity))
			r.Delete("/roles/delete-user/{uid}", deleteUserHandler(cfg.Identity))
		})

		// Doctors (and admins) manage availability
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(identity.RoleDoctor, identity.RoleAdmin))
			r.Post("/slots", createSlotHandler(cfg.Schedule))
		})

		// Patients book and cancel
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(identity.RolePatient, identity.RoleAdmin))
			r.Post("/slots/{id}/book", bookSlotHandler(cfg.Schedule))
			r.Post("/bookings/{id}/cancel", cancelBookingHandler(cfg.Schedule))
			r.Get("/bookings/mine", myBookingsHandler(cfg.Schedule))
		})
	})

	return r
}

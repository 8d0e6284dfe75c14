// Package httpapi exposes the account lifecycle over HTTP/JSON. Routes and
// response bodies mirror what the hosted frontend expects, Portuguese
// messages included.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/plantaofacil/accounts/internal/logging"
	"github.com/plantaofacil/accounts/internal/server/config"
	"github.com/plantaofacil/accounts/internal/server/models"
	"github.com/plantaofacil/accounts/internal/server/services"
)

type API struct {
	accounts  *services.AccountService
	resets    *services.PasswordResetService
	logger    logging.Logger
	jwtSecret []byte
}

func NewAPI(accounts *services.AccountService, resets *services.PasswordResetService,
	logger logging.Logger, cfg *config.Config) *API {
	return &API{
		accounts:  accounts,
		resets:    resets,
		logger:    logger.With("module", "httpapi"),
		jwtSecret: []byte(cfg.SecretKey),
	}
}

// Router builds the route tree. Admin routes sit behind a coordinator or
// admin session token.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.handleHealthz)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", a.handleRegister)
		r.Post("/login", a.handleLogin)
		r.Post("/forgot-password", a.handleForgotPassword)
		r.Post("/reset-password", a.handleResetPassword)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(a.requireRole(models.RoleCoordenador, models.RoleAdmin))
		r.Get("/pending-users", a.handleListPendingUsers)
		r.Post("/pending-users/{id}/approve", a.handleApproveUser)
		r.Post("/pending-users/{id}/reject", a.handleRejectUser)
	})

	return r
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

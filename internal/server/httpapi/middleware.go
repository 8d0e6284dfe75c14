package httpapi

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/plantaofacil/accounts/internal/server/auth"
	"github.com/plantaofacil/accounts/internal/server/models"
)

type contextKey string

const sessionUserKey contextKey = "session_user_id"

// sessionUserID returns the authenticated user id stored by requireRole,
// or "system" when the request never passed through the guard.
func sessionUserID(ctx context.Context) string {
	if id, ok := ctx.Value(sessionUserKey).(string); ok && id != "" {
		return id
	}
	return "system"
}

// requireRole verifies the Bearer token and checks its role claim against
// the allowed set. Permission checks always happen here on the backend,
// whatever the frontend already hid.
func (a *API) requireRole(allowed ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				writeError(w, http.StatusUnauthorized, "Nao autorizado. Por favor, faca login.")
				return
			}

			claims, err := auth.ParseToken(token, a.jwtSecret)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Nao autorizado. Por favor, faca login.")
				return
			}

			if !slices.Contains(allowed, claims.Role) {
				writeError(w, http.StatusForbidden, "Acesso negado. Voce nao tem permissao para acessar este recurso.")
				return
			}

			ctx := context.WithValue(r.Context(), sessionUserKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package client

import (
	"log/slog"
	"net/http"

	apperrors "github.com/tendant/agroyield/pkg/errors"
)

// RequireAuth returns 401 unless AuthUserMiddleware has identified the caller.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthUser(r) == nil {
			slog.Debug("Unauthenticated request to protected resource")
			apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminMiddleware allows only staff, superusers and members of Admins.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r)
		if user == nil {
			apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !user.IsAdmin {
			slog.Warn("User lacks admin permission", "userId", user.UserId, "role", user.Role)
			apperrors.RenderMessage(w, r, http.StatusForbidden, "You do not have permission to perform this action.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole allows callers whose role is one of roles. Admins always pass.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetAuthUser(r)
			if user == nil {
				apperrors.RenderMessage(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if user.IsAdmin {
				next.ServeHTTP(w, r)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			slog.Warn("User lacks required role", "userId", user.UserId, "role", user.Role, "requiredRoles", roles)
			apperrors.RenderMessage(w, r, http.StatusForbidden, "You do not have permission to perform this action.")
		})
	}
}

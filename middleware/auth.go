// middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"p9e.in/loantracker/config"
	"p9e.in/loantracker/models"
	"p9e.in/loantracker/pkg/identity"
	"p9e.in/loantracker/utils"
)

var gateway identity.Gateway

// SetGateway wires the identity gateway used for bearer verification. Called
// once from route registration.
func SetGateway(g identity.Gateway) { gateway = g }

// unexported type prevents collisions in context
type ctxKey int

const (
	profileKey ctxKey = iota
)

// AuthMiddleware validates the bearer token, re-resolves the profile from the
// database on every request (so a deactivation takes effect immediately, no
// caching) and stashes the Profile in ctx.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			utils.JSONError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.JSONError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		id, err := gateway.Verify(r.Context(), parts[1])
		if err != nil {
			utils.JSONError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		var profile models.Profile
		if err := config.DB.WithContext(r.Context()).First(&profile, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.JSONError(w, http.StatusUnauthorized, "User profile not found")
				return
			}
			utils.JSONError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		if !profile.IsActive {
			utils.JSONError(w, http.StatusForbidden, "Account is deactivated")
			return
		}

		ctx := context.WithValue(r.Context(), profileKey, &profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the resolved profile carries the given role. Role is a
// closed two-value type, so the mismatch arm covers exactly the other role.
func RequireRole(role models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := GetProfile(r)
		if p == nil {
			utils.JSONError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		if p.Role != role {
			utils.JSONError(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetProfile pulls the resolved *Profile out of the request context (or nil).
func GetProfile(r *http.Request) *models.Profile {
	if p, ok := r.Context().Value(profileKey).(*models.Profile); ok {
		return p
	}
	return nil
}

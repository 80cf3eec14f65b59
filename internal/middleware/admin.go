package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/repo"
)

const adminKey contextKey = "admin"

// AdminPrincipal is the authenticated admin attached to the request context.
type AdminPrincipal struct {
	AdminID uuid.UUID
	Name    string
	Role    string
}

// AuthenticateAdmin guards admin routes: signature/expiry check first, then
// a blacklist lookup by the exact token string. A blacklisted token is
// rejected even while cryptographically valid, and a blacklist store error
// rejects the request rather than letting it through.
func AuthenticateAdmin(codec *auth.TokenCodec, blacklist repo.BlacklistRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondAdminError(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := codec.VerifyAdminAccess(token)
			if err != nil {
				respondAdminError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			revoked, err := blacklist.Contains(r.Context(), token)
			if err != nil {
				log.Printf("[admin-auth] blacklist check failed: %v", err)
				respondAdminError(w, http.StatusInternalServerError, "Authentication failed due to system error")
				return
			}
			if revoked {
				respondAdminError(w, http.StatusForbidden, "Access token has been revoked")
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, AdminPrincipal{
				AdminID: claims.AdminID,
				Name:    claims.Name,
				Role:    claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetAdmin returns the authenticated admin attached by AuthenticateAdmin.
func GetAdmin(ctx context.Context) (AdminPrincipal, bool) {
	a, ok := ctx.Value(adminKey).(AdminPrincipal)
	return a, ok
}

func respondAdminError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fin100x/server/internal/auth"
	"github.com/fin100x/server/internal/repo"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated end-user attached to the request context.
type Principal struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

// Authenticate guards user routes. A cryptographically valid access token is
// not enough: the session it references must still exist, be unrevoked and
// unexpired, so logout is observable before the token's natural expiry.
func Authenticate(codec *auth.TokenCodec, sessions repo.SessionRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondCode(w, http.StatusUnauthorized, "NO_AUTH", "Missing token")
				return
			}

			claims, err := codec.VerifyUserAccess(token)
			if err != nil {
				respondCode(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
				return
			}

			session, err := sessions.GetByID(r.Context(), claims.SessionID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					respondCode(w, http.StatusUnauthorized, "SESSION_REVOKED", "Session revoked")
					return
				}
				// Fail closed: if revocation state is unknown, reject.
				respondCode(w, http.StatusInternalServerError, "SERVER_ERROR", "Authentication failed")
				return
			}
			if session.Revoked || session.UserID != claims.UserID || !time.Now().Before(session.ExpiresAt) {
				respondCode(w, http.StatusUnauthorized, "SESSION_REVOKED", "Session revoked")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, Principal{
				UserID:    claims.UserID,
				SessionID: claims.SessionID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal returns the authenticated user attached by Authenticate.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func respondCode(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}

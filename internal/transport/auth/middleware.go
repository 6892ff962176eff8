package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"payment-collect-visa/internal/domain"
)

type ctxKey string

const UserIDKey ctxKey = "userID"

type TokenFinder interface {
	FindTokenByPlainToken(ctx context.Context, plainToken string) (*domain.PersonalAccessToken, error)
}

// SanctumMiddleware authenticates a request by personal access token, taken
// from the Authorization header or, for websocket upgrades, the token query param.
func SanctumMiddleware(tokens TokenFinder) func(http.Handler) http.Handler {
	return sanctum(tokens, time.Now)
}

func sanctum(tokens TokenFinder, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pat := lookup(r.Context(), tokens, bearerToken(r), "header")
			if pat == nil {
				pat = lookup(r.Context(), tokens, r.URL.Query().Get("token"), "query")
			}

			if pat == nil {
				log.Printf("[AUTH] %s %s from %s: no valid token", r.Method, r.URL.Path, r.RemoteAddr)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if pat.Expired(now()) {
				log.Printf("[AUTH] token %d expired at %v", pat.ID, pat.ExpiresAt)
				http.Error(w, "Token expired", http.StatusUnauthorized)
				return
			}

			ctx := WithUserID(r.Context(), pat.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}

func lookup(ctx context.Context, tokens TokenFinder, plain, source string) *domain.PersonalAccessToken {
	if plain == "" {
		return nil
	}
	pat, err := tokens.FindTokenByPlainToken(ctx, plain)
	if err != nil {
		log.Printf("[AUTH] token lookup (%s) error: %v", source, err)
		return nil
	}
	return pat
}

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	if !ok {
		return 0, errors.New("userID not found in context")
	}
	return userID, nil
}

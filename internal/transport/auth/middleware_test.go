package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"payment-collect-visa/internal/domain"
)

var authNow = time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)

type tokenMap map[string]*domain.PersonalAccessToken

func (m tokenMap) FindTokenByPlainToken(_ context.Context, plain string) (*domain.PersonalAccessToken, error) {
	pat, ok := m[plain]
	if !ok {
		return nil, errors.New("token not found")
	}
	return pat, nil
}

func protected(tokens TokenFinder) http.Handler {
	return sanctum(tokens, func() time.Time { return authNow })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserID(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(strconv.FormatInt(id, 10)))
	}))
}

func TestSanctumMiddleware(t *testing.T) {
	expired := authNow.Add(-time.Minute)
	tokens := tokenMap{
		"1|good":    {ID: 1, UserID: 42},
		"2|expired": {ID: 2, UserID: 43, ExpiresAt: &expired},
	}
	h := protected(tokens)

	tests := []struct {
		name   string
		target string
		header string
		code   int
		body   string
	}{
		{"bearer header", "/collects", "Bearer 1|good", http.StatusOK, "42"},
		{"query token", "/ws?token=1%7Cgood", "", http.StatusOK, "42"},
		{"bad header falls back to query", "/ws?token=1%7Cgood", "Bearer nope", http.StatusOK, "42"},
		{"unknown token", "/collects", "Bearer nope", http.StatusUnauthorized, ""},
		{"no token", "/collects", "", http.StatusUnauthorized, ""},
		{"expired token", "/collects", "Bearer 2|expired", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if rr.Code != tt.code {
				t.Fatalf("expected %d; got %d", tt.code, rr.Code)
			}
			if tt.body != "" && rr.Body.String() != tt.body {
				t.Fatalf("expected body %q; got %q", tt.body, rr.Body.String())
			}
		})
	}
}

func TestGetUserID_Missing(t *testing.T) {
	if _, err := GetUserID(context.Background()); err == nil {
		t.Fatalf("expected error without user in context")
	}
	if id, _ := GetUserID(WithUserID(context.Background(), 7)); id != 7 {
		t.Fatalf("expected 7; got %d", id)
	}
}

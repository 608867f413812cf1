package authenticate

import (
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/api/cont"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	tokens map[string]string
}

func (f fakeAuth) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if user, ok := f.tokens[token]; ok {
		return &entity.UserAuth{Username: user, Token: token}, nil
	}
	return nil, errors.New("unknown token")
}

func newHandler(auth Authenticate) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := cont.GetUser(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(user.Username))
	})
	return New(log, auth)(next)
}

func TestAuthenticate(t *testing.T) {
	handler := newHandler(fakeAuth{tokens: map[string]string{"secret": "admin", "key-1": "shop"}})

	tests := []struct {
		name   string
		header map[string]string
		status int
		user   string
	}{
		{name: "bearer token", header: map[string]string{"Authorization": "Bearer secret"}, status: http.StatusOK, user: "admin"},
		{name: "api key header", header: map[string]string{ApiKeyHeader: "key-1"}, status: http.StatusOK, user: "shop"},
		{name: "no credentials", status: http.StatusUnauthorized},
		{name: "bearer without token", header: map[string]string{"Authorization": "Bearer"}, status: http.StatusUnauthorized},
		{name: "other scheme", header: map[string]string{"Authorization": "Basic secret"}, status: http.StatusUnauthorized},
		{name: "unknown token", header: map[string]string{"Authorization": "Bearer nope"}, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/merchants", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			if tt.user != "" {
				assert.Equal(t, tt.user, rec.Body.String())
				assert.Equal(t, tt.user, rec.Header().Get("X-User"))
			}
		})
	}
}

func TestAuthenticateDisabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	newHandler(nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", remoteAddr(req))
}

package authenticate

import (
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/api/cont"
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"WhatsGrapp/internal/metrics"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ApiKeyHeader carries a generated API key for clients that cannot set Authorization.
const ApiKeyHeader = "X-Api-Key"

// Failure reasons, also used as the metrics label.
const (
	reasonMissing  = "missing_token"
	reasonDisabled = "disabled"
	reasonRejected = "rejected"
)

type Authenticate interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
}

// New rejects requests without a valid listen key or API key and stores the
// authenticated user in the request context.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetReqID(r.Context())
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			attrs := []any{
				mod,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", remoteAddr(r)),
				slog.String("request_id", id),
			}
			defer func() {
				if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
					attrs = append(attrs, slog.String("route", rc.RoutePattern()))
				}
				attrs = append(attrs,
					slog.Int("status", ww.Status()),
					slog.Int("size", ww.BytesWritten()),
					slog.Float64("duration", time.Since(start).Seconds()),
				)
				log.With(attrs...).Info("incoming request")
			}()

			reject := func(reason, message string) {
				attrs = append(attrs, slog.String("auth_failure", reason))
				metrics.AuthFailed(reason)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(ww, r, response.Error(message))
			}

			token := requestToken(r)
			if token == "" {
				reject(reasonMissing, "Token not found")
				return
			}
			attrs = append(attrs, sl.Secret("token", token))

			if auth == nil {
				reject(reasonDisabled, "Unauthorized: authentication not enabled")
				return
			}

			user, err := auth.AuthenticateByToken(token)
			if err != nil {
				attrs = append(attrs, sl.Err(err))
				reject(reasonRejected, "Unauthorized: token not found")
				return
			}
			attrs = append(attrs, slog.String("user", user.Username))

			ww.Header().Set("X-Request-ID", id)
			ww.Header().Set("X-User", user.Username)
			next.ServeHTTP(ww, r.WithContext(cont.PutUser(r.Context(), user)))
		}

		return http.HandlerFunc(fn)
	}
}

// requestToken reads "Authorization: Bearer <token>", falling back to the API key header.
func requestToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.Header.Get(ApiKeyHeader))
}

// remoteAddr prefers the first X-Forwarded-For hop when behind a proxy.
func remoteAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}

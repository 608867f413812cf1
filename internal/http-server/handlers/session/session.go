package session

import (
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func logger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module("http.handlers.session"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")

		session, err := handler.GetSession(r.Context(), phone)
		if err != nil {
			status := response.StatusFor(err)
			if status != http.StatusNotFound {
				logger(log, r).Error("get session", sl.Phone(phone), sl.Err(err))
			}
			response.Fail(w, r, status, "No active session")
			return
		}

		render.JSON(w, r, response.Ok(session))
	}
}

// Reset force-expires the conversation of the phone.
func Reset(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phone := chi.URLParam(r, "phone")

		if err := handler.ResetSession(r.Context(), phone); err != nil {
			logger(log, r).Error("reset session", sl.Phone(phone), sl.Err(err))
			response.Fail(w, r, http.StatusInternalServerError, "Failed to reset session")
			return
		}

		render.JSON(w, r, response.Ok(nil))
	}
}

func Stats(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := handler.CountActiveSessions(r.Context())
		if err != nil {
			logger(log, r).Error("count sessions", sl.Err(err))
			response.Fail(w, r, http.StatusInternalServerError, "Failed to count sessions")
			return
		}

		render.JSON(w, r, response.Ok(map[string]int64{"active": count}))
	}
}

func Cleanup(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := handler.CleanupSessions(r.Context())
		if err != nil {
			logger(log, r).Error("cleanup sessions", sl.Err(err))
			response.Fail(w, r, http.StatusInternalServerError, "Failed to cleanup sessions")
			return
		}

		render.JSON(w, r, response.Ok(map[string]int64{"removed": removed}))
	}
}

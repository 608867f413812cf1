package key

import (
	"WhatsGrapp/internal/lib/api/cont"
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	GenerateApiKey(username string) (string, error)
}

type Request struct {
	Username string `json:"username"`
}

func (k *Request) Bind(_ *http.Request) error {
	return nil
}

// Generate issues an api key for a username; only the admin key may call it.
func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.key")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user, err := cont.GetUser(r.Context())
		if err != nil || user.Username != "admin" {
			response.Fail(w, r, http.StatusForbidden, "Forbidden")
			return
		}

		var req Request
		if err = render.Bind(r, &req); err != nil || req.Username == "" {
			response.Fail(w, r, http.StatusBadRequest, "Username is required")
			return
		}

		key, err := handler.GenerateApiKey(req.Username)
		if err != nil {
			logger.Error("generate api key", sl.Err(err))
			response.Fail(w, r, http.StatusInternalServerError, "Failed to generate key")
			return
		}
		logger.Info("api key generated", slog.String("username", req.Username))

		render.JSON(w, r, response.Ok(map[string]string{"username": req.Username, "key": key}))
	}
}

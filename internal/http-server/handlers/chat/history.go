package chat

import (
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// History lists logged chat messages, newest first, optionally for one phone.
func History(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.chat")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get("limit"))
		offset, _ := strconv.Atoi(query.Get("offset"))

		messages, err := handler.ChatMessages(r.Context(), query.Get("phone"), limit, offset)
		if err != nil {
			logger.Error("get chat messages", sl.Err(err))
			response.Fail(w, r, http.StatusInternalServerError, "Failed to load messages")
			return
		}

		render.JSON(w, r, response.Ok(messages))
	}
}

package chat

import (
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// SendMessage feeds a web chat message into the onboarding conversation.
func SendMessage(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.chat")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.ChatMessageRequest
		if err := render.Bind(r, &req); err != nil {
			logger.Debug("bad request", sl.Err(err))
			response.Fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		logger = logger.With(sl.Phone(req.Phone))

		reply, err := handler.ProcessChatMessage(r.Context(), &req)
		if err != nil {
			logger.Error("process chat message", sl.Err(err))
			response.Fail(w, r, http.StatusInternalServerError, "Failed to process message")
			return
		}
		logger.Debug("chat message processed", slog.String("step", reply.Step))

		render.JSON(w, r, response.Ok(reply))
	}
}

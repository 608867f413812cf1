package ai

import (
	"WhatsGrapp/ai/intent"
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

type Core interface {
	AiChat(ctx context.Context, req *entity.AiChatRequest) (*entity.AiAnswer, error)
}

// Chat answers a free-form message with the intent responder.
func Chat(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.ai")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.AiChatRequest
		if err := render.Bind(r, &req); err != nil {
			response.Fail(w, r, http.StatusBadRequest, err.Error())
			return
		}

		answer, err := handler.AiChat(r.Context(), &req)
		if err != nil {
			logger.Error("ai chat", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Response{
				Success: false,
				Message: intent.MsgTrouble,
				Data: entity.AiAnswer{
					Text:        intent.MsgTrouble,
					Intent:      entity.IntentGeneral,
					Suggestions: []string{"Browse Products 🛍️", "Try Again 🔄", "Contact Support 📞"},
				},
			})
			return
		}
		logger.Debug("ai chat answered",
			slog.String("intent", answer.Intent),
			slog.String("source", answer.Source),
		)

		render.JSON(w, r, response.Ok(answer))
	}
}

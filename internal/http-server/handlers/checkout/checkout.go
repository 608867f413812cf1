package checkout

import (
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Checkout places a mock order; payment always succeeds.
func Checkout(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.checkout")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.CheckoutRequest
		if err := render.Bind(r, &req); err != nil {
			response.Fail(w, r, http.StatusBadRequest, err.Error())
			return
		}

		order, err := handler.Checkout(r.Context(), &req)
		if err != nil {
			status := response.StatusFor(err)
			switch status {
			case http.StatusNotFound:
				response.Fail(w, r, status, "Product not found")
			case http.StatusConflict:
				response.Fail(w, r, status, "Not enough stock")
			default:
				logger.Error("checkout", sl.Err(err))
				response.Fail(w, r, status, "Checkout failed")
			}
			return
		}
		logger.Info("checkout completed", slog.String("order_id", order.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(order))
	}
}

func Order(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := handler.GetOrder(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			status := response.StatusFor(err)
			if status == http.StatusNotFound {
				response.Fail(w, r, status, "Order not found")
				return
			}
			log.With(sl.Module("http.handlers.checkout")).Error("get order", sl.Err(err))
			response.Fail(w, r, status, "Failed to load order")
			return
		}

		render.JSON(w, r, response.Ok(order))
	}
}

package product

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

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.product")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req entity.ProductRequest
		if err := render.Bind(r, &req); err != nil {
			response.Fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		logger = logger.With(slog.String("merchant_id", req.MerchantID))

		info, err := handler.AddProduct(r.Context(), &req)
		if err != nil {
			status := response.StatusFor(err)
			if status == http.StatusNotFound {
				response.Fail(w, r, status, "Merchant not found")
				return
			}
			logger.Error("add product", sl.Err(err))
			response.Fail(w, r, status, "Failed to add product")
			return
		}
		logger.Debug("product added", slog.String("product_id", info.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(info))
	}
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := handler.GetProduct(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			status := response.StatusFor(err)
			if status == http.StatusNotFound {
				response.Fail(w, r, status, "Product not found")
				return
			}
			log.With(sl.Module("http.handlers.product")).Error("get product", sl.Err(err))
			response.Fail(w, r, status, "Failed to load product")
			return
		}

		render.JSON(w, r, response.Ok(info))
	}
}

package merchant

import (
	"WhatsGrapp/entity"
	"WhatsGrapp/internal/lib/api/response"
	"WhatsGrapp/internal/lib/sl"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

func logger(log *slog.Logger, r *http.Request) *slog.Logger {
	return log.With(
		sl.Module("http.handlers.merchant"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entity.MerchantRequest
		if err := render.Bind(r, &req); err != nil {
			response.Fail(w, r, http.StatusBadRequest, err.Error())
			return
		}

		merchant, err := handler.RegisterMerchant(r.Context(), &req)
		if err != nil {
			logger(log, r).Error("register merchant", sl.Err(err))
			response.Fail(w, r, response.StatusFor(err), "Failed to register merchant")
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(merchant))
	}
}

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		merchants, err := handler.ListMerchants(r.Context(), limit, offset)
		if err != nil {
			logger(log, r).Error("list merchants", sl.Err(err))
			response.Fail(w, r, http.StatusInternalServerError, "Failed to list merchants")
			return
		}

		render.JSON(w, r, response.Ok(merchants))
	}
}

func Get(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchant, err := handler.GetMerchant(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			status := response.StatusFor(err)
			if status == http.StatusNotFound {
				response.Fail(w, r, status, "Merchant not found")
				return
			}
			logger(log, r).Error("get merchant", sl.Err(err))
			response.Fail(w, r, status, "Failed to load merchant")
			return
		}

		render.JSON(w, r, response.Ok(merchant))
	}
}

func Products(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := handler.ListProducts(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			status := response.StatusFor(err)
			if status == http.StatusNotFound {
				response.Fail(w, r, status, "Merchant not found")
				return
			}
			logger(log, r).Error("list products", sl.Err(err))
			response.Fail(w, r, status, "Failed to list products")
			return
		}

		render.JSON(w, r, response.Ok(products))
	}
}

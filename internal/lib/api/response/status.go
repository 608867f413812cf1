package response

import (
	"WhatsGrapp/entity"
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// Fail writes an error body with the given status.
func Fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, Error(message))
}

// StatusFor maps domain errors to HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrOutOfStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

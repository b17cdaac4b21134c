package pkg

import (
	"net/http"

	"github.com/go-chi/render"
	"github.com/gobuffalo/validate"
	"github.com/pkg/errors"
)

type response struct {
	Err interface{} `json:"error,omitempty"`
}

// StatusFor maps an error onto the HTTP status it is reported with.
func StatusFor(err error) int {
	var verr *validate.Errors
	switch {
	case errors.As(err, &verr), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Render(w http.ResponseWriter, r *http.Request, res interface{}) {
	switch v := res.(type) {
	case error:
		status := StatusFor(v)
		msg := v.Error()
		if status == http.StatusInternalServerError {
			msg = http.StatusText(status)
		}
		render.Status(r, status)
		render.JSON(w, r, response{Err: msg})
	default:
		render.Status(r, http.StatusOK)
		render.JSON(w, r, res)
	}
}

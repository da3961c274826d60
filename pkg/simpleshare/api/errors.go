package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-share/pkg/simpleshare"
)

// ErrorResponse is the JSON body returned for all error statuses
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps a service error to its HTTP status. Domain errors map to
// specific statuses with the sentinel's message; infrastructure failures
// are logged verbosely server-side and surface as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, simpleshare.ErrLinkNotFound),
		errors.Is(err, simpleshare.ErrFileNotFound),
		errors.Is(err, simpleshare.ErrTextNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, simpleshare.ErrLinkExpired),
		errors.Is(err, simpleshare.ErrFileExpired),
		errors.Is(err, simpleshare.ErrTextExpired):
		status, message = http.StatusGone, err.Error()
	case errors.Is(err, simpleshare.ErrCodeTaken):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, simpleshare.ErrTooLarge):
		status, message = http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, simpleshare.ErrPasswordRequired):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, simpleshare.ErrPasswordIncorrect):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, simpleshare.ErrInvalidAddress),
		errors.Is(err, simpleshare.ErrEmptyContent):
		status, message = http.StatusBadRequest, err.Error()
	default:
		slog.Error("Storage failure", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

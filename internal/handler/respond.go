package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/templui/fliptrack/internal/capture"
	"github.com/templui/fliptrack/internal/report"
	"github.com/templui/fliptrack/internal/repository"
	"github.com/templui/fliptrack/internal/service"
	"github.com/templui/fliptrack/internal/ui"
	"github.com/templui/fliptrack/internal/validation"
)

const maxJSONBody = 1 << 20

var errBadRequest = errors.New("malformed request")

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Retry bool   `json:"retry,omitempty"`
}

// writeError maps an error onto a status code. Unexpected errors are logged and
// reported with the generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var verr *validation.Error

	switch {
	case errors.As(err, &verr):
		ui.JSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: verr.Message, Field: verr.Field})
	case errors.Is(err, repository.ErrNotFound):
		ui.JSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error(), Retry: true})
	case errors.Is(err, errBadRequest),
		errors.Is(err, service.ErrNoPhotos),
		errors.Is(err, service.ErrProjectRequired),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidAmount):
		ui.JSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, capture.ErrCameraNotOpen),
		errors.Is(err, capture.ErrSubmitInProgress):
		ui.JSON(w, r, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, capture.ErrClosed):
		ui.JSON(w, r, http.StatusGone, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidShareLink):
		ui.JSON(w, r, http.StatusForbidden, errorResponse{Error: service.ErrInvalidShareLink.Error()})
	case errors.Is(err, report.ErrReportGenerationFailed):
		slog.Error(message, "error", err, "path", r.URL.Path)
		ui.JSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to generate report", Retry: true})
	case errors.Is(err, context.Canceled):
		// client went away
		slog.Debug("request cancelled", "path", r.URL.Path)
	default:
		slog.Error(message, "error", err, "path", r.URL.Path)
		ui.JSON(w, r, http.StatusInternalServerError, errorResponse{Error: message})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	err := dec.Decode(v)
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", errBadRequest, name)
	}
	return id, nil
}

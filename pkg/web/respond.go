package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ritzau/casegraph/pkg/ingest"
	"github.com/ritzau/casegraph/pkg/logging"
	"github.com/ritzau/casegraph/pkg/model"
	"github.com/ritzau/casegraph/pkg/shell"
)

// maxBodySize bounds JSON request bodies
const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("failed to write response", "error", err)
	}
}

// writeError maps domain errors onto HTTP status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorContext(r.Context(), "request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	var serviceErr *ingest.ServiceError
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shell.ErrEditorClosed), errors.Is(err, model.ErrNoActiveCase):
		return http.StatusConflict
	case errors.Is(err, ingest.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &serviceErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body; malformed input is a validation error
func decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", model.ErrValidation, err)
	}
	return nil
}

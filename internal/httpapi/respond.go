package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/campusworks-org/backend/internal/lib"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps the service error taxonomy onto HTTP status codes.
// Validation and authentication problems surface verbatim for the client to
// correct; storage failures are logged and masked.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, lib.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, lib.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, lib.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, lib.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	default:
		log.Error("internal error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "an unexpected error occurred"})
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return lib.ValidationError("malformed request body")
	}
	return nil
}

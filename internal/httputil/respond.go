// Package httputil holds the JSON response helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"schooltalk/internal/common"
)

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("failed to encode response: %v", err)
		}
	}
}

// WriteError maps the service error taxonomy onto HTTP status codes.
// Unknown errors become 500 without leaking internals.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal error"

	switch {
	case errors.Is(err, common.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrNotAuthorized):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrInvalidMessage),
		errors.Is(err, common.ErrInvalidAttachment),
		errors.Is(err, common.ErrEmptyCohort):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, common.ErrInvalidTransition):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, common.ErrUpstreamUnavailable):
		status, msg = http.StatusBadGateway, err.Error()
	default:
		log.Printf("unhandled error: %v", err)
	}

	WriteJSON(w, status, map[string]string{"error": msg})
}

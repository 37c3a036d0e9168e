package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schooltalk/internal/common"
)

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "thr-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "thr-1", payload["id"])
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", common.ErrNotFound, http.StatusNotFound},
		{"not authorized", common.ErrNotAuthorized, http.StatusForbidden},
		{"invalid message", common.ErrInvalidMessage, http.StatusUnprocessableEntity},
		{"invalid attachment", common.ErrInvalidAttachment, http.StatusUnprocessableEntity},
		{"empty cohort", common.ErrEmptyCohort, http.StatusUnprocessableEntity},
		{"invalid transition", common.ErrInvalidTransition, http.StatusConflict},
		{"upstream unavailable", common.ErrUpstreamUnavailable, http.StatusBadGateway},
		{"wrapped sentinel", fmt.Errorf("append: %w", common.ErrInvalidTransition), http.StatusConflict},
		{"unknown error", fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("dsn user:pass@tcp leaked"))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "internal error", payload["error"])
}

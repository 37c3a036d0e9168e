package fanout

import (
	"encoding/json"
	"errors"
	"net/http"

	"schooltalk/internal/common"
	"schooltalk/internal/httputil"
	"schooltalk/internal/messaging"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type broadcastRequest struct {
	Cohort  Cohort `json:"cohort"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Broadcast handles POST /broadcasts. The response is the full delivery
// report; callers show total_sent as the confirmation count.
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())

	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	report, err := h.service.Broadcast(r.Context(), caller, req.Cohort, req.Subject, req.Body)
	if err != nil {
		if errors.Is(err, ErrUnknownCohort) || errors.Is(err, messaging.ErrSubjectRequired) {
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

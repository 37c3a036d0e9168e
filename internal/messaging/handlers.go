package messaging

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"schooltalk/internal/common"
	"schooltalk/internal/dbmysql"
	"schooltalk/internal/httputil"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type createThreadRequest struct {
	RecipientID string  `json:"recipient_id"`
	Subject     string  `json:"subject"`
	StudentRef  *string `json:"student_ref,omitempty"`
}

type appendMessageRequest struct {
	Body        string              `json:"body"`
	Attachments []common.Attachment `json:"attachments,omitempty"`
}

type threadResponse struct {
	ID           string            `json:"id"`
	Subject      string            `json:"subject"`
	StudentRef   *string           `json:"student_ref,omitempty"`
	Status       string            `json:"status"`
	Participants []string          `json:"participants"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	Messages     []messageResponse `json:"messages,omitempty"`
}

type messageResponse struct {
	ID          string              `json:"id"`
	ThreadID    string              `json:"thread_id"`
	SenderID    string              `json:"sender_id"`
	Body        string              `json:"body"`
	Attachments []common.Attachment `json:"attachments,omitempty"`
	Read        bool                `json:"read"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ListThreads handles GET /threads.
func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())

	summaries, err := h.service.ListThreads(r.Context(), caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summaries)
}

// GetThread handles GET /threads/{threadID}.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())
	threadID := mux.Vars(r)["threadID"]

	thread, err := h.service.GetThread(r.Context(), threadID, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toThreadResponse(thread, true))
}

// CreateThread handles POST /threads (create-or-find).
func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())

	var req createThreadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	thread, err := h.service.CreateOrFindThread(r.Context(), caller, req.RecipientID, req.Subject, req.StudentRef)
	if err != nil {
		if errors.Is(err, ErrSubjectRequired) || errors.Is(err, ErrSelfThread) {
			httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toThreadResponse(thread, false))
}

// AppendMessage handles POST /threads/{threadID}/messages.
func (h *Handler) AppendMessage(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())
	threadID := mux.Vars(r)["threadID"]

	var req appendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	msg, err := h.service.AppendMessage(r.Context(), threadID, caller, req.Body, req.Attachments)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toMessageResponse(msg))
}

// GetMessages handles GET /threads/{threadID}/messages with limit/offset
// pagination.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())
	threadID := mux.Vars(r)["threadID"]

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	messages, err := h.service.GetMessages(r.Context(), threadID, caller, limit, offset)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]messageResponse, len(messages))
	for i, m := range messages {
		out[i] = toMessageResponse(m)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// MarkRead handles POST /threads/{threadID}/messages/{messageID}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())
	vars := mux.Vars(r)

	err := h.service.MarkRead(r.Context(), vars["threadID"], vars["messageID"], caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// TotalUnread handles GET /threads/unread-count.
func (h *Handler) TotalUnread(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())

	total, err := h.service.TotalUnread(r.Context(), caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int64{"unread": total})
}

// CloseThread handles POST /threads/{threadID}/close.
func (h *Handler) CloseThread(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())
	threadID := mux.Vars(r)["threadID"]

	thread, err := h.service.Close(r.Context(), threadID, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toThreadResponse(thread, false))
}

// ReopenThread handles POST /threads/{threadID}/reopen.
func (h *Handler) ReopenThread(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())
	threadID := mux.Vars(r)["threadID"]

	thread, err := h.service.Reopen(r.Context(), threadID, caller)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toThreadResponse(thread, false))
}

// DeleteThread handles DELETE /threads/{threadID}. Rare, off the hot path.
func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	caller := common.CallerID(r.Context())
	threadID := mux.Vars(r)["threadID"]

	if err := h.service.DeleteThread(r.Context(), threadID, caller); err != nil {
		httputil.WriteError(w, err)
		return
	}
	log.Printf("thread %s deleted by %s", threadID, caller)
	w.WriteHeader(http.StatusNoContent)
}

func toThreadResponse(t *dbmysql.Thread, withMessages bool) threadResponse {
	resp := threadResponse{
		ID:           t.ID,
		Subject:      t.Subject,
		StudentRef:   t.StudentRef,
		Status:       t.Status,
		Participants: t.Participants,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if withMessages {
		resp.Messages = make([]messageResponse, len(t.Messages))
		for i := range t.Messages {
			resp.Messages[i] = toMessageResponse(&t.Messages[i])
		}
	}
	return resp
}

func toMessageResponse(m *dbmysql.Message) messageResponse {
	return messageResponse{
		ID:          m.ID,
		ThreadID:    m.ThreadID,
		SenderID:    m.SenderID,
		Body:        m.Body,
		Attachments: m.Attachments,
		Read:        m.Read,
		CreatedAt:   m.CreatedAt,
	}
}

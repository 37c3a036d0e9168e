package attachment

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"schooltalk/internal/dbmongo"
	"schooltalk/internal/httputil"
)

type Handler struct {
	service Service
	blobs   *dbmongo.BlobStorage
}

func NewHandler(service Service, blobs *dbmongo.BlobStorage) *Handler {
	return &Handler{service: service, blobs: blobs}
}

// Upload handles POST /attachments (multipart form, field "file"). The
// returned metadata is what callers pass back when appending a message.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	mimetype := header.Header.Get("Content-Type")
	att, err := h.service.Store(r.Context(), file, header.Size, mimetype, header.Filename)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, att)
}

// Discard handles DELETE /media/{fileID}. Uploads happen before the message
// append, so a caller who abandons the draft can drop the orphaned blob.
func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileID"]

	if err := h.blobs.Delete(r.Context(), fileID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	log.Printf("attachment %s discarded", fileID)
	w.WriteHeader(http.StatusNoContent)
}

// Serve handles GET /media/{fileID}, streaming the blob back out.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileID"]

	stream, size, err := h.blobs.Open(r.Context(), fileID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	if _, err := io.Copy(w, stream); err != nil {
		log.Printf("error streaming file %s: %v", fileID, err)
	}
}

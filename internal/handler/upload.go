package handler

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/Shivanand-hulikatti/event-portal/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	imageField = "image"
	// multipart framing allowance on top of the image itself
	formOverhead = 64 << 10
)

// UploadImage handles POST /admin/events/{id}/image. The image is sent as
// the "image" field of a multipart form; its type is sniffed from content.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImageBytes+formOverhead)
	file, _, err := r.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field \"image\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxImageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}
	if len(data) > service.MaxImageBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "image is too large")
		return
	}

	event, err := h.events.SetImage(r.Context(), id, http.DetectContentType(data), bytes.NewReader(data))
	if err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error("request failed", "op", "upload image", "error", err)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

package handlers

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/133matt/ChatServer/internal/metrics"
)

// UploadResponse is the direct-upload result.
type UploadResponse struct {
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Upload handles POST /upload: a multipart "file" field or raw request
// body is re-hosted in the object store and its public URL returned.
// The upload is decoupled from message creation; clients reference the
// returned URL in a later POST /messages.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.objects == nil {
		h.Error(w, http.StatusServiceUnavailable, "object store not configured")
		return
	}

	body, contentType, filename, err := h.uploadPayload(r)
	if err != nil {
		h.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	// Buffer through a size-capped reader so oversized uploads fail with
	// 413 instead of being truncated.
	data, err := io.ReadAll(io.LimitReader(body, h.limits.MaxInlineMediaBytes+1))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(data) == 0 {
		h.Error(w, http.StatusBadRequest, "no file provided")
		return
	}
	if int64(len(data)) > h.limits.MaxInlineMediaBytes {
		h.Error(w, http.StatusRequestEntityTooLarge, "file exceeds size limit")
		return
	}

	key := uuid.NewString() + uploadExtension(filename, contentType)

	url, err := h.objects.Put(r.Context(), key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "upload failed")
		return
	}

	metrics.MediaUploads.Inc()
	h.JSON(w, http.StatusOK, UploadResponse{
		URL:         url,
		Size:        int64(len(data)),
		ContentType: contentType,
	})
}

// uploadPayload extracts the upload bytes: the multipart "file" field when
// present, otherwise the raw request body.
func (h *Handler) uploadPayload(r *http.Request) (io.ReadCloser, string, string, error) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", "", errNoFile
		}
		fileCT := header.Header.Get("Content-Type")
		if fileCT == "" {
			fileCT = "application/octet-stream"
		}
		return file, fileCT, header.Filename, nil
	}

	if ct == "" {
		ct = "application/octet-stream"
	}
	return r.Body, ct, "", nil
}

var errNoFile = &uploadError{"no file provided"}

type uploadError struct{ msg string }

func (e *uploadError) Error() string { return e.msg }

// uploadExtension picks an object-key extension from the client filename,
// falling back to the content type.
func uploadExtension(filename, contentType string) string {
	if ext := filepath.Ext(filename); ext != "" {
		return strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

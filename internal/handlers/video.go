package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/133matt/ChatServer/internal/ingest"
	"github.com/133matt/ChatServer/internal/intake"
	"github.com/133matt/ChatServer/internal/metrics"
	"github.com/133matt/ChatServer/internal/objectstore"
	"github.com/133matt/ChatServer/internal/videosource"
)

// DownloadVideo handles POST /download-video: fetches a shared video,
// re-hosts it, and records the resulting message. Long-running; bounded by
// the intake timeout and cancelled if the client disconnects.
func (h *Handler) DownloadVideo(w http.ResponseWriter, r *http.Request) {
	if h.intake == nil {
		h.Error(w, http.StatusServiceUnavailable, "video intake not configured")
		return
	}

	var req intake.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.intake.Download(r.Context(), req)
	if err != nil {
		h.videoError(w, err)
		return
	}

	metrics.VideoDownloads.WithLabelValues("ok").Inc()
	h.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) videoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, videosource.ErrInvalidSourceURL):
		metrics.VideoDownloads.WithLabelValues("invalid_url").Inc()
		h.Error(w, http.StatusBadRequest, "invalid or unsupported video URL")
	case errors.Is(err, videosource.ErrSourceUnavailable):
		metrics.VideoDownloads.WithLabelValues("source_error").Inc()
		h.Error(w, http.StatusInternalServerError, "video source unavailable")
	case errors.Is(err, objectstore.ErrUploadFailed):
		metrics.VideoDownloads.WithLabelValues("upload_error").Inc()
		h.Error(w, http.StatusInternalServerError, "failed to re-host video")
	default:
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			metrics.ValidationFailures.WithLabelValues(verr.Code).Inc()
			h.JSON(w, http.StatusBadRequest, verr)
			return
		}
		metrics.VideoDownloads.WithLabelValues("store_error").Inc()
		h.Error(w, http.StatusInternalServerError, "failed to record message")
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/133matt/ChatServer/internal/ingest"
	"github.com/133matt/ChatServer/internal/metrics"
	"github.com/133matt/ChatServer/internal/models"
	"github.com/133matt/ChatServer/internal/store"
)

// ListMessages handles GET /messages. Returns the most recent messages in
// ascending timestamp order; limit is clamped, never rejected.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := h.limits.ListDefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > h.limits.ListMaxLimit {
		limit = h.limits.ListMaxLimit
	}

	messages, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	h.JSON(w, http.StatusOK, messages)
}

// CreateMessage handles POST /messages.
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var payload ingest.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg, err := h.pipeline.Ingest(r.Context(), payload)
	if err != nil {
		h.ingestError(w, err)
		return
	}

	metrics.MessagesIngested.WithLabelValues(kindLabel(msg.MediaKind)).Inc()
	h.JSON(w, http.StatusCreated, msg)
}

// DeleteMessage handles DELETE /messages/{id}.
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to delete message")
		return
	}
	if !ok {
		h.Error(w, http.StatusNotFound, "message not found")
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"id": id})
}

// ClearMessages handles DELETE /messages: bulk clear, optionally gated by
// the admin key.
func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		h.Error(w, http.StatusForbidden, "invalid admin key")
		return
	}

	count, err := h.store.DeleteAll(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to clear messages")
		return
	}

	h.JSON(w, http.StatusOK, map[string]int64{"deleted": count})
}

// ingestError maps a pipeline failure onto an HTTP response.
func (h *Handler) ingestError(w http.ResponseWriter, err error) {
	var verr *ingest.ValidationError
	if errors.As(err, &verr) {
		metrics.ValidationFailures.WithLabelValues(verr.Code).Inc()
		status := http.StatusBadRequest
		if verr.Code == ingest.CodePayloadTooLarge {
			status = http.StatusRequestEntityTooLarge
		}
		h.JSON(w, status, verr)
		return
	}
	if errors.Is(err, store.ErrUnavailable) {
		h.Error(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	h.Error(w, http.StatusInternalServerError, "failed to store message")
}

func kindLabel(kind string) string {
	if kind == "" {
		return "none"
	}
	return kind
}

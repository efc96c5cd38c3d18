package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// PurgeRequest is the on-demand age purge input.
type PurgeRequest struct {
	MaxAgeHours int `json:"maxAgeHours"`
}

// PurgeMessages handles POST /maintenance/purge: removes messages older
// than maxAgeHours. Explicit maintenance action, gated like bulk delete;
// nothing runs it on a schedule.
func (h *Handler) PurgeMessages(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		h.Error(w, http.StatusForbidden, "invalid admin key")
		return
	}

	var req PurgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.MaxAgeHours <= 0 {
		h.Error(w, http.StatusBadRequest, "maxAgeHours must be positive")
		return
	}

	cutoff := time.Now().Add(-time.Duration(req.MaxAgeHours) * time.Hour)
	count, err := h.store.PurgeBefore(r.Context(), cutoff)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to purge messages")
		return
	}

	h.JSON(w, http.StatusOK, map[string]int64{"deleted": count})
}

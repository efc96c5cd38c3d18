package handlers

import (
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/133matt/ChatServer/internal/config"
	"github.com/133matt/ChatServer/internal/ingest"
	"github.com/133matt/ChatServer/internal/intake"
	"github.com/133matt/ChatServer/internal/objectstore"
	"github.com/133matt/ChatServer/internal/store"
)

// Authorizer decides whether a maintenance request (bulk delete, purge) may
// proceed. Not a security boundary; just the historical shared-key gate.
type Authorizer func(r *http.Request) bool

// AllowAll authorizes every request. Used when no admin key is configured.
func AllowAll(r *http.Request) bool { return true }

// BcryptKeyAuthorizer checks the "key" query parameter against a bcrypt
// hash. An empty hash falls back to AllowAll.
func BcryptKeyAuthorizer(hash string) Authorizer {
	if hash == "" {
		return AllowAll
	}
	return func(r *http.Request) bool {
		key := r.URL.Query().Get("key")
		if key == "" {
			return false
		}
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) == nil
	}
}

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store     store.MessageStore
	pipeline  *ingest.Pipeline
	objects   objectstore.ObjectStore // nil when no object store is configured
	intake    *intake.Intake          // nil when video intake is not configured
	limits    config.Limits
	authorize Authorizer
}

// NewHandler creates a Handler. objects and videoIntake may be nil; the
// corresponding endpoints then answer 503.
func NewHandler(st store.MessageStore, pipeline *ingest.Pipeline, objects objectstore.ObjectStore, videoIntake *intake.Intake, limits config.Limits, authorize Authorizer) *Handler {
	if authorize == nil {
		authorize = AllowAll
	}
	return &Handler{
		store:     st,
		pipeline:  pipeline,
		objects:   objects,
		intake:    videoIntake,
		limits:    limits,
		authorize: authorize,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// Package api provides HTTP handlers for the Majka API.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/majkahealth/majka-server/internal/catalog"
	"github.com/majkahealth/majka-server/internal/chat"
	"github.com/majkahealth/majka-server/internal/guided"
	"github.com/majkahealth/majka-server/internal/identity"
	"github.com/majkahealth/majka-server/internal/plan"
	"github.com/majkahealth/majka-server/internal/store"
)

// Handler provides the REST endpoints consumed by the intake frontend.
type Handler struct {
	catalog   *catalog.Service
	identity  *identity.Service
	repo      store.Repository
	plans     *plan.Service
	assistant chat.Assistant
	launcher  *guided.Launcher
}

// NewHandler creates a new Handler. assistant may be nil when chat is not
// configured.
func NewHandler(cat *catalog.Service, id *identity.Service, repo store.Repository,
	plans *plan.Service, assistant chat.Assistant, launcher *guided.Launcher) *Handler {
	return &Handler{
		catalog:   cat,
		identity:  id,
		repo:      repo,
		plans:     plans,
		assistant: assistant,
		launcher:  launcher,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response. Clients surface this detail when
// present, falling back to a generic message otherwise.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

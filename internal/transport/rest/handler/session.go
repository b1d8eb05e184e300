package handler

import (
	"encoding/json"
	"net/http"

	"ideagauge/internal/service"
)

// SessionHandler handles anonymous session issuance.
type SessionHandler struct {
	authSvc *service.AuthService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(authSvc *service.AuthService) *SessionHandler {
	return &SessionHandler{authSvc: authSvc}
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authSvc.CreateSession()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

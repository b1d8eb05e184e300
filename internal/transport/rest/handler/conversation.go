package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"ideagauge/internal/repository"
	"ideagauge/internal/service"
	"ideagauge/internal/transport/rest/middleware"
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	convSvc *service.ConversationService
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(convSvc *service.ConversationService) *ConversationHandler {
	return &ConversationHandler{convSvc: convSvc}
}

// CreateRequest is the request body for starting a conversation.
type CreateRequest struct {
	Language string `json:"language"`
}

// Create handles POST /v1/conversations
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	clientID := middleware.GetClientID(r.Context())

	var req CreateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Language == "" {
		req.Language = "en"
	}

	conv, greeting, err := h.convSvc.Start(r.Context(), clientID, req.Language)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start conversation")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"conversation": conv,
		"greeting":     greeting,
	})
}

// List handles GET /v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	convs, err := h.convSvc.List(r.Context(), middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": convs})
}

// Get handles GET /v1/conversations/{id}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.convSvc.Get(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// MessageRequest is the request body for one turn. QuestionID names the
// catalog question the content answers, when the client is replying to one.
type MessageRequest struct {
	Content    string `json:"content"`
	QuestionID string `json:"questionId,omitempty"`
}

// PostMessage handles POST /v1/conversations/{id}/messages
func (h *ConversationHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Content == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.convSvc.ProcessMessage(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context()), req.Content, req.QuestionID)
	if err != nil {
		// The schema update is committed before generation; surface it so
		// the client can retry generation without losing extracted facts.
		if errors.Is(err, service.ErrGenerationFailed) && result != nil {
			status := http.StatusBadGateway
			message := "your message was received, but generating a reply failed; please retry"
			if errors.Is(err, service.ErrAITimeout) {
				status = http.StatusGatewayTimeout
				message = "the AI is slow right now, please retry"
			}
			writeJSON(w, status, map[string]interface{}{
				"error":     message,
				"retryable": true,
				"schema":    result.Schema,
			})
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// GetMessages handles GET /v1/conversations/{id}/messages?limit=n
func (h *ConversationHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	messages, err := h.convSvc.Messages(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context()), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// GetProgress handles GET /v1/conversations/{id}/progress
func (h *ConversationHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := h.convSvc.Progress(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// writeServiceError maps service-layer failures onto HTTP statuses without
// leaking raw upstream error text.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "conversation not found")
	case errors.Is(err, service.ErrAIAuth):
		writeError(w, http.StatusServiceUnavailable, "AI service is not configured")
	case errors.Is(err, service.ErrAITimeout):
		writeError(w, http.StatusGatewayTimeout, "the AI is slow right now, please retry")
	case errors.Is(err, service.ErrAIUnavailable):
		writeError(w, http.StatusBadGateway, "AI service unavailable, please retry")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

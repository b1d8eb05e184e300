// Package ws streams conversation turns over a WebSocket. For each user
// message the server emits content chunks as generation produces them, then
// the choices metadata, then the updated schema, then a done event, always
// in that order.
package ws

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"ideagauge/internal/model"
	"ideagauge/internal/repository"
	"ideagauge/internal/service"
	"ideagauge/internal/transport/rest/middleware"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer
	},
}

// MessageType defines the type of WebSocket event.
type MessageType string

const (
	// Client -> server
	MsgUserMessage MessageType = "user_message"

	// Server -> client, per turn, in order
	MsgChunk   MessageType = "chunk"
	MsgChoices MessageType = "choices"
	MsgSchema  MessageType = "schema"
	MsgDone    MessageType = "done"
	MsgError   MessageType = "error"
)

// Envelope is the WebSocket message format in both directions. QuestionID is
// client -> server only: the catalog question the content answers, if any.
type Envelope struct {
	Type       MessageType     `json:"type"`
	Content    string          `json:"content,omitempty"`
	QuestionID string          `json:"questionId,omitempty"`
	Choices    []model.Choice  `json:"choices,omitempty"`
	Schema     json.RawMessage `json:"schema,omitempty"`
	Error      string          `json:"error,omitempty"`
	Retryable  bool            `json:"retryable,omitempty"`
}

// Handler handles streaming conversation connections.
type Handler struct {
	convSvc *service.ConversationService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(convSvc *service.ConversationService) *Handler {
	return &Handler{convSvc: convSvc}
}

// Stream handles GET /v1/ws/conversations/{id}. Turns are processed
// sequentially per connection; the client must not send a new message before
// the previous turn's done event.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["id"]
	clientID := middleware.GetClientID(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[WS] Client %s connected to conversation %s", clientID, conversationID)

	var writeMu sync.Mutex
	send := func(env Envelope) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(env)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				err := conn.WriteMessage(websocket.PingMessage, nil)
				writeMu.Unlock()
				if err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error: %v", err)
			}
			return
		}
		if env.Type != MsgUserMessage || env.Content == "" {
			send(Envelope{Type: MsgError, Error: "expected a user_message with content"})
			continue
		}

		h.runTurn(r, conversationID, clientID, env.Content, env.QuestionID, send)
	}
}

func (h *Handler) runTurn(r *http.Request, conversationID, clientID, content, questionID string, send func(Envelope) error) {
	onChunk := func(delta string) {
		send(Envelope{Type: MsgChunk, Content: delta})
	}

	result, err := h.convSvc.ProcessMessageStream(r.Context(), conversationID, clientID, content, questionID, onChunk)
	if err != nil {
		// The merged schema is still committed server-side; tell the client
		// whether retrying generation makes sense.
		env := Envelope{Type: MsgError, Error: "something went wrong producing a reply, please retry"}
		switch {
		case errors.Is(err, repository.ErrNotFound):
			env.Error = "conversation not found"
		case errors.Is(err, service.ErrAIAuth):
			env.Error = "AI service is not configured"
		case errors.Is(err, service.ErrAITimeout):
			env.Error = "the AI is slow right now, please retry"
			env.Retryable = true
		default:
			env.Retryable = true
		}
		if result != nil {
			env.Schema = marshalSchema(result.Schema)
		}
		send(env)
		return
	}

	if len(result.Choices) > 0 {
		send(Envelope{Type: MsgChoices, Choices: result.Choices})
	}
	send(Envelope{Type: MsgSchema, Schema: marshalSchema(result.Schema)})
	send(Envelope{Type: MsgDone})
}

func marshalSchema(s model.Schema) json.RawMessage {
	data, err := json.Marshal(s)
	if err != nil {
		return nil
	}
	return data
}

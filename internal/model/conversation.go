package model

import "time"

// MessageRole identifies who produced a message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Conversation is one evaluation session. The schema is embedded and
// superseded wholesale on every turn, never patched field by field in the
// store.
type Conversation struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	ClientID  string    `json:"clientId" bson:"clientId"`
	Language  string    `json:"language" bson:"language"`
	Schema    Schema    `json:"schema" bson:"schema"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Message is one transcript entry. Choices carry the canonical options when
// the assistant asked a choice question.
type Message struct {
	ID             string      `json:"id" bson:"_id,omitempty"`
	ConversationID string      `json:"conversationId" bson:"conversationId"`
	Role           MessageRole `json:"role" bson:"role"`
	Content        string      `json:"content" bson:"content"`
	Choices        []Choice    `json:"choices,omitempty" bson:"choices,omitempty"`
	CreatedAt      time.Time   `json:"createdAt" bson:"createdAt"`
}

package model

// ExtractionResult is the AI response for turning one free-text user message
// into structured schema updates.
type ExtractionResult struct {
	Understood      string       `json:"understood"`      // one-line paraphrase
	ExtractedFields SchemaUpdate `json:"extractedFields"` // partial sections
	Confidence      float64      `json:"confidence"`      // 0-1
}

// StateDirective is what the orchestrator hands to response generation: the
// target state, a rendered summary of everything known so far, and the next
// catalog question when one is in play.
type StateDirective struct {
	State         ConversationState `json:"state"`
	SchemaSummary string            `json:"schemaSummary"`
	Understood    string            `json:"understood,omitempty"`
	Question      *Question         `json:"question,omitempty"`
}

// TurnResult is the outcome of one orchestrated turn. Schema is valid even
// when response generation failed; the caller persists it regardless.
type TurnResult struct {
	AssistantMessage string    `json:"assistantMessage"`
	Choices          []Choice  `json:"choices,omitempty"`
	Schema           Schema    `json:"schema"`
	Question         *Question `json:"question,omitempty"`
}

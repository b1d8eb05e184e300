package model

// ConversationState is the response mode of a conversation. It is always
// derived from the completion score via schema.NextState, never stored on
// its own and advanced by events. Keeping it derived avoids score/state
// drift.
type ConversationState string

const (
	// StateAskQuestion: too little known, keep asking clarifying questions.
	StateAskQuestion ConversationState = "ASK_QUESTION"
	// StatePreliminaryEval: enough for first-pass feedback plus gap probing.
	StatePreliminaryEval ConversationState = "PRELIMINARY_EVAL"
	// StateFullEval: enough for the full scored evaluation.
	StateFullEval ConversationState = "FULL_EVAL"
)

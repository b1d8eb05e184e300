package model

import "time"

// DimensionScore is one axis of the evaluation report.
type DimensionScore struct {
	Name  string `json:"name" bson:"name"`
	Score int    `json:"score" bson:"score"` // 0-100
	Why   string `json:"why" bson:"why"`
}

// EvaluationReport is the final scored feasibility report produced once a
// conversation has gathered enough information.
type EvaluationReport struct {
	ID             string           `json:"id" bson:"_id,omitempty"`
	ConversationID string           `json:"conversationId" bson:"conversationId"`
	Verdict        string           `json:"verdict" bson:"verdict"` // go | caution | no_go
	Summary        string           `json:"summary" bson:"summary"`
	Dimensions     []DimensionScore `json:"dimensions" bson:"dimensions"`
	Risks          []string         `json:"risks,omitempty" bson:"risks,omitempty"`
	Suggestions    []string         `json:"suggestions,omitempty" bson:"suggestions,omitempty"`
	CreatedAt      time.Time        `json:"createdAt" bson:"createdAt"`
}

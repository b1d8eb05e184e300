package model

// QuestionType defines how a clarifying question is answered.
type QuestionType string

const (
	QuestionOpen   QuestionType = "open"   // free text
	QuestionChoice QuestionType = "choice" // pick from options
)

// Option is one selectable answer for a choice question. Value is what gets
// stored in the schema when this option is picked; Label is what the user
// sees.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question is one catalog entry in the question bank, bound to exactly one
// schema field.
type Question struct {
	ID        string       `json:"id"`
	FieldPath string       `json:"fieldPath"`
	Text      string       `json:"text"`
	Type      QuestionType `json:"type"`
	Options   []Option     `json:"options,omitempty"`
	Priority  int          `json:"priority"`
	IsMVP     bool         `json:"isMvp"`
}

// Choice is the wire shape of one selectable reply attached to an assistant
// message, matching the ---CHOICES--- JSON payload.
type Choice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Progress reports filled/total counts per question tier, for UI progress
// indicators.
type Progress struct {
	MVPFilled    int     `json:"mvpFilled"`
	MVPTotal     int     `json:"mvpTotal"`
	MVPPercent   float64 `json:"mvpPercent"`
	SuppFilled   int     `json:"suppFilled"`
	SuppTotal    int     `json:"suppTotal"`
	TotalPercent float64 `json:"totalPercent"`
}

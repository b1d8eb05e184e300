package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ideagauge/internal/config"
	"ideagauge/internal/model"
)

// ChoicesMarker delimits the human-readable message from the trailing JSON
// choice list in generated responses. This exact two-part format is a
// compatibility point with the response prompt; do not change it.
const ChoicesMarker = "---CHOICES---"

// Responder produces the user-facing message from a state directive.
type Responder interface {
	Respond(ctx context.Context, d model.StateDirective, history []model.Message, language string) (string, []model.Choice, error)
	RespondStream(ctx context.Context, d model.StateDirective, history []model.Message, language string, onChunk func(string)) (string, []model.Choice, error)
}

// ResponderService implements Responder on top of Gemini.
type ResponderService struct {
	client *GeminiClient
	cfg    *config.AIConfig
}

// NewResponderService creates the response-generation adapter.
func NewResponderService(client *GeminiClient, cfg *config.AIConfig) *ResponderService {
	return &ResponderService{client: client, cfg: cfg}
}

// Respond generates the full response in one call.
func (s *ResponderService) Respond(ctx context.Context, d model.StateDirective, history []model.Message, language string) (string, []model.Choice, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RespondTimeout)
	defer cancel()

	raw, err := s.client.GenerateText(ctx, s.cfg.Models.Respond, buildResponsePrompt(d, history, language))
	if err != nil {
		return "", nil, err
	}
	text, choices := SplitChoices(raw)
	return text, choices, nil
}

// RespondStream generates the response over SSE, forwarding content chunks
// as they arrive. Text belonging to the choices payload is withheld from
// onChunk; choices arrive parsed in the return value once the stream ends.
func (s *ResponderService) RespondStream(ctx context.Context, d model.StateDirective, history []model.Message, language string, onChunk func(string)) (string, []model.Choice, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RespondTimeout)
	defer cancel()

	filter := newMarkerFilter(onChunk)
	raw, err := s.client.StreamText(ctx, s.cfg.Models.Respond, buildResponsePrompt(d, history, language), filter.feed)
	if err != nil {
		return "", nil, err
	}
	filter.flush()

	text, choices := SplitChoices(raw)
	return text, choices, nil
}

// SplitChoices splits raw generated text on the first choices marker. The
// part before the marker is the message; the remainder is parsed as
// {"choices": [...]}. A missing marker means plain text, and an unparseable
// remainder degrades to "no choices".
func SplitChoices(raw string) (string, []model.Choice) {
	idx := strings.Index(raw, ChoicesMarker)
	if idx < 0 {
		return strings.TrimSpace(raw), nil
	}

	text := strings.TrimSpace(raw[:idx])
	rest := strings.TrimSpace(raw[idx+len(ChoicesMarker):])

	var payload struct {
		Choices []model.Choice `json:"choices"`
	}
	if err := json.Unmarshal([]byte(rest), &payload); err != nil {
		return text, nil
	}
	return text, payload.Choices
}

// markerFilter forwards streamed deltas up to the choices marker, holding
// back a small tail so a marker split across chunk boundaries is still
// caught.
type markerFilter struct {
	onChunk func(string)
	pending string
	stopped bool
}

func newMarkerFilter(onChunk func(string)) *markerFilter {
	return &markerFilter{onChunk: onChunk}
}

func (f *markerFilter) feed(delta string) {
	if f.stopped || f.onChunk == nil {
		return
	}
	f.pending += delta
	if idx := strings.Index(f.pending, ChoicesMarker); idx >= 0 {
		if idx > 0 {
			f.onChunk(f.pending[:idx])
		}
		f.pending = ""
		f.stopped = true
		return
	}
	// Keep enough to recognize a marker starting at the chunk boundary.
	hold := len(ChoicesMarker) - 1
	if len(f.pending) > hold {
		f.onChunk(f.pending[:len(f.pending)-hold])
		f.pending = f.pending[len(f.pending)-hold:]
	}
}

func (f *markerFilter) flush() {
	if f.stopped || f.onChunk == nil || f.pending == "" {
		return
	}
	f.onChunk(f.pending)
	f.pending = ""
}

func buildResponsePrompt(d model.StateDirective, history []model.Message, language string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `You are a friendly, pragmatic product coach helping someone evaluate a project idea.
Respond in %s. Be concise and conversational; no headings, no bullet walls.

What is known about the idea so far:
%s
`, languageName(language), orPlaceholder(d.SchemaSummary, "(nothing yet)"))

	if d.Understood != "" {
		fmt.Fprintf(&sb, "\nWhat the user just conveyed: %s\n", d.Understood)
	}

	if len(history) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
		}
	}

	switch d.State {
	case model.StateAskQuestion:
		sb.WriteString("\nTask: briefly acknowledge what the user just shared, then ask exactly this question:\n")
		if d.Question != nil {
			fmt.Fprintf(&sb, "%q\n", d.Question.Text)
			if d.Question.Type == model.QuestionChoice {
				sb.WriteString("\nAfter your message, on a new line, output the literal marker " + ChoicesMarker + " followed by this exact JSON object:\n")
				sb.WriteString(choicesJSON(d.Question) + "\n")
				sb.WriteString("Do not invent, reorder, or reword the choices.\n")
			}
		}
	case model.StatePreliminaryEval:
		sb.WriteString(`
Task: give first-pass feedback on the idea as described so far: one genuine strength,
one open risk, and one thing worth clarifying next. Then invite the user to keep going.
`)
	case model.StateFullEval:
		sb.WriteString(`
Task: enough is known for a full read. Give an honest feasibility assessment: is this
buildable by one person, what is the hard part, what should the very first version skip.
End by mentioning that a full scored report is available.
`)
	}

	return sb.String()
}

func choicesJSON(q *model.Question) string {
	payload := struct {
		Choices []model.Choice `json:"choices"`
	}{}
	for _, opt := range q.Options {
		payload.Choices = append(payload.Choices, model.Choice{ID: opt.ID, Text: opt.Label})
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

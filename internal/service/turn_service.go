package service

import (
	"context"
	"fmt"
	"log"

	"ideagauge/internal/model"
	"ideagauge/internal/question"
	"ideagauge/internal/schema"
)

// TurnService is the conversational state machine. It holds no state of its
// own: every call takes the full current schema plus one user message and
// returns the new schema with directives already rendered into a response.
type TurnService struct {
	extractor Extractor
	responder Responder
}

// NewTurnService creates the turn orchestrator.
func NewTurnService(extractor Extractor, responder Responder) *TurnService {
	return &TurnService{extractor: extractor, responder: responder}
}

// HandleTurn processes one user message against one schema snapshot. asked
// is the catalog question the message answers, when the client named one;
// nil means free conversation. When onChunk is non-nil the response is
// streamed through it.
//
// Extraction failures degrade gracefully: the turn continues with no new
// structured fields. Generation failures are fatal for the turn, but the
// merged schema is still returned alongside the error: the extracted facts
// reflect real information the user gave and must not be discarded just
// because phrasing failed.
func (s *TurnService) HandleTurn(ctx context.Context, sc model.Schema, message, language string, asked *model.Question, history []model.Message, onChunk func(string)) (*model.TurnResult, error) {
	update := model.SchemaUpdate{}
	understood := ""
	extraction, err := s.extractor.Extract(ctx, message, sc, language)
	if err != nil {
		log.Printf("[Turn] Extraction degraded to empty update: %v", err)
	} else {
		update = extraction.ExtractedFields
		understood = extraction.Understood
	}
	// Even an empty update advances the schema's UpdatedAt stamp.
	merged := schema.Merge(sc, update)

	// A reply that names an asked choice question is authoritative for its
	// bound field; the catalog options are exactly what ParseAnswer can
	// resolve. Free-text turns and open-question replies ride on extraction
	// alone, so conversational filler never lands in a field verbatim.
	if asked != nil && asked.Type == model.QuestionChoice {
		value := question.ParseAnswer(asked, message)
		if value != "" {
			if u, ok := schema.UpdateForField(asked.FieldPath, value); ok {
				merged = schema.Merge(merged, u)
			}
		}
	}

	state := merged.Meta.CurrentState
	var next *model.Question
	if state == model.StateAskQuestion {
		next = question.Next(merged)
		if next == nil {
			// All fields filled yet score below the ask threshold cannot
			// happen with the current scoring constants; handled anyway.
			state = model.StatePreliminaryEval
		}
	}

	directive := model.StateDirective{
		State:         state,
		SchemaSummary: schema.Summary(merged),
		Understood:    understood,
		Question:      next,
	}

	var text string
	var choices []model.Choice
	if onChunk != nil {
		text, choices, err = s.responder.RespondStream(ctx, directive, history, language, onChunk)
	} else {
		text, choices, err = s.responder.Respond(ctx, directive, history, language)
	}
	if err != nil {
		return &model.TurnResult{Schema: merged, Question: next},
			fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	// The catalog's options are authoritative for choice questions; whatever
	// choice list the model emitted is replaced so replies always resolve
	// back through ParseAnswer.
	if next != nil && next.Type == model.QuestionChoice {
		choices = question.ChoicesFor(next)
	}

	return &model.TurnResult{
		AssistantMessage: text,
		Choices:          choices,
		Schema:           merged,
		Question:         next,
	}, nil
}

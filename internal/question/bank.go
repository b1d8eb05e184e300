// Package question holds the static clarifying-question catalog and the
// tolerant answer resolver. There is no failure mode here: running out of
// questions is a normal terminal signal, and an unresolvable choice reply
// degrades to free text.
package question

import (
	"strconv"
	"strings"

	"ideagauge/internal/model"
	"ideagauge/internal/schema"
)

// Bank is the ordered question catalog. The three MVP questions always come
// first; within each tier, catalog order.
var Bank = []model.Question{
	{
		ID: "q_idea", FieldPath: schema.FieldIdeaOneLiner, Priority: 1, IsMVP: true,
		Type: model.QuestionOpen,
		Text: "What do you want to build? One sentence is enough.",
	},
	{
		ID: "q_user", FieldPath: schema.FieldUserPrimaryUser, Priority: 2, IsMVP: true,
		Type: model.QuestionOpen,
		Text: "Who is this mainly for? Yourself, a specific group, or everyone?",
	},
	{
		ID: "q_platform", FieldPath: schema.FieldPlatformForm, Priority: 3, IsMVP: true,
		Type: model.QuestionChoice,
		Text: "Where should it run?",
		Options: []model.Option{
			{ID: "a", Label: "Website", Value: string(model.PlatformWeb)},
			{ID: "b", Label: "iPhone App", Value: string(model.PlatformIOS)},
			{ID: "c", Label: "Android App", Value: string(model.PlatformAndroid)},
			{ID: "d", Label: "Browser Plugin", Value: string(model.PlatformPlugin)},
			{ID: "e", Label: "Command Line", Value: string(model.PlatformCLI)},
		},
	},
	{
		ID: "q_scenario", FieldPath: schema.FieldProblemScenario, Priority: 10,
		Type: model.QuestionOpen,
		Text: "When does this problem actually come up? Walk me through a moment you hit it.",
	},
	{
		ID: "q_pain", FieldPath: schema.FieldProblemPainLevel, Priority: 11,
		Type: model.QuestionChoice,
		Text: "How much does this problem bother you today?",
		Options: []model.Option{
			{ID: "a", Label: "Mild annoyance", Value: string(model.PainLow)},
			{ID: "b", Label: "Regular friction", Value: string(model.PainMedium)},
			{ID: "c", Label: "Serious pain", Value: string(model.PainHigh)},
		},
	},
	{
		ID: "q_first_job", FieldPath: schema.FieldMVPFirstJob, Priority: 12,
		Type: model.QuestionOpen,
		Text: "If the first version could only do one thing, what should it be?",
	},
	{
		ID: "q_mvp_type", FieldPath: schema.FieldMVPType, Priority: 13,
		Type: model.QuestionChoice,
		Text: "What kind of tool is the first version?",
		Options: []model.Option{
			{ID: "a", Label: "Content or info tool", Value: string(model.MVPContentTool)},
			{ID: "b", Label: "Functional utility", Value: string(model.MVPFunctionalTool)},
			{ID: "c", Label: "AI-powered tool", Value: string(model.MVPAITool)},
			{ID: "d", Label: "Something else", Value: string(model.MVPOther)},
		},
	},
	{
		ID: "q_dependency", FieldPath: schema.FieldConstraintsAPIOrDep, Priority: 14,
		Type: model.QuestionChoice,
		Text: "Does it need outside data or services to work?",
		Options: []model.Option{
			{ID: "a", Label: "No, self-contained", Value: string(model.DependencyNone)},
			{ID: "b", Label: "Maybe, not sure yet", Value: string(model.DependencyPossible)},
			{ID: "c", Label: "Yes, definitely", Value: string(model.DependencyConfirmed)},
		},
	},
	{
		ID: "q_privacy", FieldPath: schema.FieldConstraintsPrivacy, Priority: 15,
		Type: model.QuestionChoice,
		Text: "How sensitive is the data it touches?",
		Options: []model.Option{
			{ID: "a", Label: "Nothing personal", Value: string(model.PrivacyLow)},
			{ID: "b", Label: "Some personal data", Value: string(model.PrivacyMedium)},
			{ID: "c", Label: "Very sensitive", Value: string(model.PrivacyHigh)},
		},
	},
	{
		ID: "q_priority", FieldPath: schema.FieldPreferencePriority, Priority: 16,
		Type: model.QuestionChoice,
		Text: "What matters most to you for this build?",
		Options: []model.Option{
			{ID: "a", Label: "Ship fast", Value: string(model.PriorityShipFast)},
			{ID: "b", Label: "Stability first", Value: string(model.PriorityStableFirst)},
			{ID: "c", Label: "Keep costs down", Value: string(model.PriorityCostFirst)},
		},
	},
	{
		ID: "q_timeline", FieldPath: schema.FieldPreferenceTimeline, Priority: 17,
		Type: model.QuestionChoice,
		Text: "When do you want something usable in hand?",
		Options: []model.Option{
			{ID: "a", Label: "Within a week", Value: string(model.Timeline7d)},
			{ID: "b", Label: "Two weeks", Value: string(model.Timeline14d)},
			{ID: "c", Label: "A month", Value: string(model.Timeline30d)},
			{ID: "d", Label: "No rush", Value: string(model.TimelineFlexible)},
		},
	},
	{
		ID: "q_background", FieldPath: schema.FieldIdeaBackground, Priority: 18,
		Type: model.QuestionOpen,
		Text: "Any background worth knowing? Why this idea, why now?",
	},
	{
		ID: "q_usage_context", FieldPath: schema.FieldUserUsageContext, Priority: 19,
		Type: model.QuestionOpen,
		Text: "In what situation would someone reach for it? On the go, at a desk, occasionally?",
	},
}

// Next returns the first catalog question whose bound field is not filled,
// or nil when everything is answered.
func Next(s model.Schema) *model.Question {
	for i := range Bank {
		if !schema.IsFilled(s, Bank[i].FieldPath) {
			q := Bank[i]
			return &q
		}
	}
	return nil
}

// ByID looks up a catalog question.
func ByID(id string) *model.Question {
	for i := range Bank {
		if Bank[i].ID == id {
			q := Bank[i]
			return &q
		}
	}
	return nil
}

// ParseAnswer resolves a raw user reply against a question. Open questions
// return the trimmed text verbatim. Choice questions resolve in this exact
// precedence: option id, option label, stored value, 1-based numeric index,
// then case-insensitive substring of a label (reply must be at least 2
// characters). Anything unresolved passes through as free text, because
// replies may come from speech transcription and be imprecise.
func ParseAnswer(q *model.Question, raw string) string {
	text := strings.TrimSpace(raw)
	if q == nil || q.Type != model.QuestionChoice || text == "" {
		return text
	}

	for _, opt := range q.Options {
		if text == opt.ID {
			return opt.Value
		}
	}
	for _, opt := range q.Options {
		if text == opt.Label {
			return opt.Value
		}
	}
	for _, opt := range q.Options {
		if text == opt.Value {
			return opt.Value
		}
	}
	if idx, err := strconv.Atoi(text); err == nil && idx >= 1 && idx <= len(q.Options) {
		return q.Options[idx-1].Value
	}
	if len([]rune(text)) >= 2 {
		lower := strings.ToLower(text)
		for _, opt := range q.Options {
			if strings.Contains(strings.ToLower(opt.Label), lower) {
				return opt.Value
			}
		}
	}
	return text
}

// ChoicesFor converts a question's canonical options into wire choices.
// Returns nil for open questions.
func ChoicesFor(q *model.Question) []model.Choice {
	if q == nil || q.Type != model.QuestionChoice {
		return nil
	}
	choices := make([]model.Choice, 0, len(q.Options))
	for _, opt := range q.Options {
		choices = append(choices, model.Choice{ID: opt.ID, Text: opt.Label})
	}
	return choices
}

// ProgressFor reports filled/total counts for the MVP and supplementary
// tiers.
func ProgressFor(s model.Schema) model.Progress {
	p := model.Progress{}
	for _, q := range Bank {
		done := schema.IsFilled(s, q.FieldPath)
		if q.IsMVP {
			p.MVPTotal++
			if done {
				p.MVPFilled++
			}
		} else {
			p.SuppTotal++
			if done {
				p.SuppFilled++
			}
		}
	}
	if p.MVPTotal > 0 {
		p.MVPPercent = float64(p.MVPFilled) / float64(p.MVPTotal) * 100
	}
	if total := p.MVPTotal + p.SuppTotal; total > 0 {
		p.TotalPercent = float64(p.MVPFilled+p.SuppFilled) / float64(total) * 100
	}
	return p
}

// Package schema holds the evaluation schema store: pure functions over
// model.Schema for fill checks, completion scoring, state derivation, and
// the single sanctioned merge path. Nothing here performs I/O.
package schema

import (
	"fmt"
	"strings"
	"time"

	"ideagauge/internal/model"
)

// Scoring constants. These are fixed product constants: answering the three
// core fields alone (90 points) is what unlocks the full evaluation, and
// supplementary fields only nudge the score. Do not tune.
const (
	corePoints      = 30
	coreCap         = 90
	suppPoints      = 2
	maxScore        = 100
	thresholdPrelim = 30
	thresholdFull   = 60
)

// NewSchema returns an empty schema: every free-text field "", every enum
// field unknown, score 0, state ASK_QUESTION.
func NewSchema() model.Schema {
	now := time.Now().UTC()
	s := model.Schema{
		Problem:  model.ProblemSection{PainLevel: model.PainLevel(model.EnumUnknown)},
		MVP:      model.MVPSection{Type: model.MVPType(model.EnumUnknown)},
		Platform: model.PlatformSection{Form: model.PlatformForm(model.EnumUnknown)},
		Constraints: model.ConstraintsSection{
			APIOrDataDependency: model.DependencyLevel(model.EnumUnknown),
			PrivacyLevel:        model.PrivacyLevel(model.EnumUnknown),
		},
		Preference: model.PreferenceSection{
			Priority: model.Priority(model.EnumUnknown),
			Timeline: model.Timeline(model.EnumUnknown),
		},
		Meta: model.SchemaMeta{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	s.Meta.CompletionScore = Score(s)
	s.Meta.CurrentState = NextState(s.Meta.CompletionScore)
	return s
}

// filled implements the fill rule for a raw field value.
func filled(f Field, s model.Schema) bool {
	v := strings.TrimSpace(f.Value(s))
	if v == "" {
		return false
	}
	if f.Enum && v == model.EnumUnknown {
		return false
	}
	return true
}

// IsFilled reports whether the field at path is filled: free-text fields are
// filled when non-empty after trim, enum fields when not the unknown
// sentinel. Unknown paths report false.
func IsFilled(s model.Schema, path string) bool {
	f, ok := FieldByPath(path)
	if !ok {
		return false
	}
	return filled(f, s)
}

// Score computes the completion score: 30 per filled core field (capped at
// 90), plus 2 per filled supplementary field, clamped to 100.
func Score(s model.Schema) int {
	core, supp := 0, 0
	for _, f := range Catalog {
		if !filled(f, s) {
			continue
		}
		if f.Core {
			core++
		} else {
			supp++
		}
	}
	score := core * corePoints
	if score > coreCap {
		score = coreCap
	}
	score += supp * suppPoints
	if score > maxScore {
		score = maxScore
	}
	return score
}

// NextState derives the conversation state from a completion score.
func NextState(score int) model.ConversationState {
	switch {
	case score < thresholdPrelim:
		return model.StateAskQuestion
	case score < thresholdFull:
		return model.StatePreliminaryEval
	default:
		return model.StateFullEval
	}
}

// Merge applies a typed partial update over s and returns the new schema
// value with UpdatedAt restamped and score/state recomputed. This is the only
// sanctioned mutation path; score and state can never drift from field
// contents because they are overwritten here on every call.
func Merge(s model.Schema, u model.SchemaUpdate) model.Schema {
	out := s
	last := s.Meta.LastUpdatedField

	if u.Idea != nil {
		if u.Idea.OneLiner != nil {
			out.Idea.OneLiner = *u.Idea.OneLiner
			last = FieldIdeaOneLiner
		}
		if u.Idea.Background != nil {
			out.Idea.Background = *u.Idea.Background
			last = FieldIdeaBackground
		}
	}
	if u.Problem != nil {
		if u.Problem.Scenario != nil {
			out.Problem.Scenario = *u.Problem.Scenario
			last = FieldProblemScenario
		}
		if u.Problem.PainLevel != nil {
			out.Problem.PainLevel = *u.Problem.PainLevel
			last = FieldProblemPainLevel
		}
	}
	if u.User != nil {
		if u.User.PrimaryUser != nil {
			out.User.PrimaryUser = *u.User.PrimaryUser
			last = FieldUserPrimaryUser
		}
		if u.User.UsageContext != nil {
			out.User.UsageContext = *u.User.UsageContext
			last = FieldUserUsageContext
		}
	}
	if u.MVP != nil {
		if u.MVP.FirstJob != nil {
			out.MVP.FirstJob = *u.MVP.FirstJob
			last = FieldMVPFirstJob
		}
		if u.MVP.Type != nil {
			out.MVP.Type = *u.MVP.Type
			last = FieldMVPType
		}
	}
	if u.Platform != nil {
		if u.Platform.Form != nil {
			out.Platform.Form = *u.Platform.Form
			last = FieldPlatformForm
		}
	}
	if u.Constraints != nil {
		if u.Constraints.APIOrDataDependency != nil {
			out.Constraints.APIOrDataDependency = *u.Constraints.APIOrDataDependency
			last = FieldConstraintsAPIOrDep
		}
		if u.Constraints.PrivacyLevel != nil {
			out.Constraints.PrivacyLevel = *u.Constraints.PrivacyLevel
			last = FieldConstraintsPrivacy
		}
	}
	if u.Preference != nil {
		if u.Preference.Priority != nil {
			out.Preference.Priority = *u.Preference.Priority
			last = FieldPreferencePriority
		}
		if u.Preference.Timeline != nil {
			out.Preference.Timeline = *u.Preference.Timeline
			last = FieldPreferenceTimeline
		}
	}

	out.Meta.LastUpdatedField = last
	out.Meta.UpdatedAt = time.Now().UTC()
	out.Meta.CompletionScore = Score(out)
	out.Meta.CurrentState = NextState(out.Meta.CompletionScore)
	return out
}

// UnfilledFields returns the paths of unfilled fields, core fields first,
// each tier in catalog order.
func UnfilledFields(s model.Schema) []string {
	var core, supp []string
	for _, f := range Catalog {
		if filled(f, s) {
			continue
		}
		if f.Core {
			core = append(core, f.Path)
		} else {
			supp = append(supp, f.Path)
		}
	}
	return append(core, supp...)
}

// Summary renders the non-empty fields as a label: value table for prompt
// context. Empty and unknown fields are omitted.
func Summary(s model.Schema) string {
	var b strings.Builder
	for _, f := range Catalog {
		if !filled(f, s) {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", f.Label, strings.TrimSpace(f.Value(s)))
	}
	return strings.TrimRight(b.String(), "\n")
}

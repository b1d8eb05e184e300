package schema

import (
	"ideagauge/internal/model"
)

// Field path constants. Paths are "section.field" and are the stable
// identifiers used by the question bank, extraction prompts, and progress
// reporting.
const (
	FieldIdeaOneLiner        = "idea.one_liner"
	FieldIdeaBackground      = "idea.background"
	FieldProblemScenario     = "problem.scenario"
	FieldProblemPainLevel    = "problem.pain_level"
	FieldUserPrimaryUser     = "user.primary_user"
	FieldUserUsageContext    = "user.usage_context"
	FieldMVPFirstJob         = "mvp.first_job"
	FieldMVPType             = "mvp.type"
	FieldPlatformForm        = "platform.form"
	FieldConstraintsAPIOrDep = "constraints.api_or_data_dependency"
	FieldConstraintsPrivacy  = "constraints.privacy_level"
	FieldPreferencePriority  = "preference.priority"
	FieldPreferenceTimeline  = "preference.timeline"
)

// Field describes one schema field: where it lives, how to read it, how to
// build a partial update writing it, and whether it is a core field.
type Field struct {
	Path  string
	Label string
	Enum  bool
	Core  bool
	Value func(s model.Schema) string
	Set   func(value string) model.SchemaUpdate
}

// Catalog is the fixed ordered field list. Order here is the catalog order
// referenced by UnfilledFields and the question bank.
var Catalog = []Field{
	{
		Path: FieldIdeaOneLiner, Label: "Idea", Core: true,
		Value: func(s model.Schema) string { return s.Idea.OneLiner },
		Set: func(v string) model.SchemaUpdate {
			return model.SchemaUpdate{Idea: &model.IdeaUpdate{OneLiner: &v}}
		},
	},
	{
		Path: FieldIdeaBackground, Label: "Background",
		Value: func(s model.Schema) string { return s.Idea.Background },
		Set: func(v string) model.SchemaUpdate {
			return model.SchemaUpdate{Idea: &model.IdeaUpdate{Background: &v}}
		},
	},
	{
		Path: FieldProblemScenario, Label: "Problem scenario",
		Value: func(s model.Schema) string { return s.Problem.Scenario },
		Set: func(v string) model.SchemaUpdate {
			return model.SchemaUpdate{Problem: &model.ProblemUpdate{Scenario: &v}}
		},
	},
	{
		Path: FieldProblemPainLevel, Label: "Pain level", Enum: true,
		Value: func(s model.Schema) string { return string(s.Problem.PainLevel) },
		Set: func(v string) model.SchemaUpdate {
			p := model.PainLevel(v)
			return model.SchemaUpdate{Problem: &model.ProblemUpdate{PainLevel: &p}}
		},
	},
	{
		Path: FieldUserPrimaryUser, Label: "Primary user", Core: true,
		Value: func(s model.Schema) string { return s.User.PrimaryUser },
		Set: func(v string) model.SchemaUpdate {
			return model.SchemaUpdate{User: &model.UserUpdate{PrimaryUser: &v}}
		},
	},
	{
		Path: FieldUserUsageContext, Label: "Usage context",
		Value: func(s model.Schema) string { return s.User.UsageContext },
		Set: func(v string) model.SchemaUpdate {
			return model.SchemaUpdate{User: &model.UserUpdate{UsageContext: &v}}
		},
	},
	{
		Path: FieldMVPFirstJob, Label: "First job",
		Value: func(s model.Schema) string { return s.MVP.FirstJob },
		Set: func(v string) model.SchemaUpdate {
			return model.SchemaUpdate{MVP: &model.MVPUpdate{FirstJob: &v}}
		},
	},
	{
		Path: FieldMVPType, Label: "MVP type", Enum: true,
		Value: func(s model.Schema) string { return string(s.MVP.Type) },
		Set: func(v string) model.SchemaUpdate {
			t := model.MVPType(v)
			return model.SchemaUpdate{MVP: &model.MVPUpdate{Type: &t}}
		},
	},
	{
		Path: FieldPlatformForm, Label: "Platform", Enum: true, Core: true,
		Value: func(s model.Schema) string { return string(s.Platform.Form) },
		Set: func(v string) model.SchemaUpdate {
			f := model.PlatformForm(v)
			return model.SchemaUpdate{Platform: &model.PlatformUpdate{Form: &f}}
		},
	},
	{
		Path: FieldConstraintsAPIOrDep, Label: "API/data dependency", Enum: true,
		Value: func(s model.Schema) string { return string(s.Constraints.APIOrDataDependency) },
		Set: func(v string) model.SchemaUpdate {
			d := model.DependencyLevel(v)
			return model.SchemaUpdate{Constraints: &model.ConstraintsUpdate{APIOrDataDependency: &d}}
		},
	},
	{
		Path: FieldConstraintsPrivacy, Label: "Privacy level", Enum: true,
		Value: func(s model.Schema) string { return string(s.Constraints.PrivacyLevel) },
		Set: func(v string) model.SchemaUpdate {
			p := model.PrivacyLevel(v)
			return model.SchemaUpdate{Constraints: &model.ConstraintsUpdate{PrivacyLevel: &p}}
		},
	},
	{
		Path: FieldPreferencePriority, Label: "Priority", Enum: true,
		Value: func(s model.Schema) string { return string(s.Preference.Priority) },
		Set: func(v string) model.SchemaUpdate {
			p := model.Priority(v)
			return model.SchemaUpdate{Preference: &model.PreferenceUpdate{Priority: &p}}
		},
	},
	{
		Path: FieldPreferenceTimeline, Label: "Timeline", Enum: true,
		Value: func(s model.Schema) string { return string(s.Preference.Timeline) },
		Set: func(v string) model.SchemaUpdate {
			t := model.Timeline(v)
			return model.SchemaUpdate{Preference: &model.PreferenceUpdate{Timeline: &t}}
		},
	},
}

// FieldByPath looks up a catalog field by its path.
func FieldByPath(path string) (Field, bool) {
	for _, f := range Catalog {
		if f.Path == path {
			return f, true
		}
	}
	return Field{}, false
}

// UpdateForField builds a partial update writing value into the field at
// path. Returns false for unknown paths.
func UpdateForField(path, value string) (model.SchemaUpdate, bool) {
	f, ok := FieldByPath(path)
	if !ok {
		return model.SchemaUpdate{}, false
	}
	return f.Set(value), true
}

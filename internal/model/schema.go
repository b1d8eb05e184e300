package model

import "time"

// EnumUnknown is the sentinel default for every enum field. An enum field
// counts as filled whenever it holds anything else, including values outside
// the documented set (custom answers are accepted, not rejected).
const EnumUnknown = "unknown"

// PainLevel rates how much the described problem hurts.
type PainLevel string

const (
	PainLow    PainLevel = "low"
	PainMedium PainLevel = "medium"
	PainHigh   PainLevel = "high"
)

// MVPType classifies the first buildable version of the idea.
type MVPType string

const (
	MVPContentTool    MVPType = "content_tool"
	MVPFunctionalTool MVPType = "functional_tool"
	MVPAITool         MVPType = "ai_tool"
	MVPOther          MVPType = "other"
)

// PlatformForm is the delivery form factor.
type PlatformForm string

const (
	PlatformWeb     PlatformForm = "web"
	PlatformIOS     PlatformForm = "ios"
	PlatformAndroid PlatformForm = "android"
	PlatformPlugin  PlatformForm = "plugin"
	PlatformCLI     PlatformForm = "cli"
)

// DependencyLevel describes reliance on external APIs or data.
type DependencyLevel string

const (
	DependencyNone      DependencyLevel = "none"
	DependencyPossible  DependencyLevel = "possible"
	DependencyConfirmed DependencyLevel = "confirmed"
)

// PrivacyLevel describes how sensitive the handled data is.
type PrivacyLevel string

const (
	PrivacyLow    PrivacyLevel = "low"
	PrivacyMedium PrivacyLevel = "medium"
	PrivacyHigh   PrivacyLevel = "high"
)

// Priority is what the user wants to optimize for.
type Priority string

const (
	PriorityShipFast    Priority = "ship_fast"
	PriorityStableFirst Priority = "stable_first"
	PriorityCostFirst   Priority = "cost_first"
)

// Timeline is the target delivery window.
type Timeline string

const (
	Timeline7d       Timeline = "7d"
	Timeline14d      Timeline = "14d"
	Timeline30d      Timeline = "30d"
	TimelineFlexible Timeline = "flexible"
)

// IdeaSection captures what the project is.
type IdeaSection struct {
	OneLiner   string `json:"one_liner" bson:"oneLiner"`
	Background string `json:"background" bson:"background"`
}

// ProblemSection captures the problem being solved.
type ProblemSection struct {
	Scenario  string    `json:"scenario" bson:"scenario"`
	PainLevel PainLevel `json:"pain_level" bson:"painLevel"`
}

// UserSection captures who the idea serves.
type UserSection struct {
	PrimaryUser  string `json:"primary_user" bson:"primaryUser"`
	UsageContext string `json:"usage_context" bson:"usageContext"`
}

// MVPSection captures the smallest useful version.
type MVPSection struct {
	FirstJob string  `json:"first_job" bson:"firstJob"`
	Type     MVPType `json:"type" bson:"type"`
}

// PlatformSection captures the delivery target.
type PlatformSection struct {
	Form PlatformForm `json:"form" bson:"form"`
}

// ConstraintsSection captures external dependencies and data sensitivity.
type ConstraintsSection struct {
	APIOrDataDependency DependencyLevel `json:"api_or_data_dependency" bson:"apiOrDataDependency"`
	PrivacyLevel        PrivacyLevel    `json:"privacy_level" bson:"privacyLevel"`
}

// PreferenceSection captures build preferences.
type PreferenceSection struct {
	Priority Priority `json:"priority" bson:"priority"`
	Timeline Timeline `json:"timeline" bson:"timeline"`
}

// SchemaMeta holds derived bookkeeping. CompletionScore and CurrentState are
// always recomputed inside schema.Merge, never written independently.
type SchemaMeta struct {
	CurrentState     ConversationState `json:"current_state" bson:"currentState"`
	CompletionScore  int               `json:"completion_score" bson:"completionScore"`
	LastUpdatedField string            `json:"last_updated_field" bson:"lastUpdatedField"`
	CreatedAt        time.Time         `json:"created_at" bson:"createdAt"`
	UpdatedAt        time.Time         `json:"updated_at" bson:"updatedAt"`
}

// Schema is the structured profile of one project idea under evaluation.
// Values are treated as immutable: every change goes through schema.Merge,
// which returns a new Schema with score and state recomputed.
type Schema struct {
	Idea        IdeaSection        `json:"idea" bson:"idea"`
	Problem     ProblemSection     `json:"problem" bson:"problem"`
	User        UserSection        `json:"user" bson:"user"`
	MVP         MVPSection         `json:"mvp" bson:"mvp"`
	Platform    PlatformSection    `json:"platform" bson:"platform"`
	Constraints ConstraintsSection `json:"constraints" bson:"constraints"`
	Preference  PreferenceSection  `json:"preference" bson:"preference"`
	Meta        SchemaMeta         `json:"_meta" bson:"meta"`
}

// IdeaUpdate carries changed fields for the idea section. Nil means "leave
// as is"; same for every other update struct below.
type IdeaUpdate struct {
	OneLiner   *string `json:"one_liner,omitempty"`
	Background *string `json:"background,omitempty"`
}

type ProblemUpdate struct {
	Scenario  *string    `json:"scenario,omitempty"`
	PainLevel *PainLevel `json:"pain_level,omitempty"`
}

type UserUpdate struct {
	PrimaryUser  *string `json:"primary_user,omitempty"`
	UsageContext *string `json:"usage_context,omitempty"`
}

type MVPUpdate struct {
	FirstJob *string  `json:"first_job,omitempty"`
	Type     *MVPType `json:"type,omitempty"`
}

type PlatformUpdate struct {
	Form *PlatformForm `json:"form,omitempty"`
}

type ConstraintsUpdate struct {
	APIOrDataDependency *DependencyLevel `json:"api_or_data_dependency,omitempty"`
	PrivacyLevel        *PrivacyLevel    `json:"privacy_level,omitempty"`
}

type PreferenceUpdate struct {
	Priority *Priority `json:"priority,omitempty"`
	Timeline *Timeline `json:"timeline,omitempty"`
}

// SchemaUpdate is a typed partial update: only non-nil sections and fields
// are applied. This is also the JSON shape the extraction model is prompted
// to return.
type SchemaUpdate struct {
	Idea        *IdeaUpdate        `json:"idea,omitempty"`
	Problem     *ProblemUpdate     `json:"problem,omitempty"`
	User        *UserUpdate        `json:"user,omitempty"`
	MVP         *MVPUpdate         `json:"mvp,omitempty"`
	Platform    *PlatformUpdate    `json:"platform,omitempty"`
	Constraints *ConstraintsUpdate `json:"constraints,omitempty"`
	Preference  *PreferenceUpdate  `json:"preference,omitempty"`
}

// IsEmpty reports whether the update carries no sections at all.
func (u *SchemaUpdate) IsEmpty() bool {
	if u == nil {
		return true
	}
	return u.Idea == nil && u.Problem == nil && u.User == nil && u.MVP == nil &&
		u.Platform == nil && u.Constraints == nil && u.Preference == nil
}

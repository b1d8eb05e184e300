package schema

import (
	"reflect"
	"strings"
	"testing"

	"ideagauge/internal/model"
)

func strPtr(s string) *string { return &s }

func TestNewSchema(t *testing.T) {
	s := NewSchema()

	if s.Meta.CompletionScore != 0 {
		t.Errorf("expected score 0, got %d", s.Meta.CompletionScore)
	}
	if s.Meta.CurrentState != model.StateAskQuestion {
		t.Errorf("expected ASK_QUESTION, got %s", s.Meta.CurrentState)
	}
	if s.Platform.Form != model.PlatformForm(model.EnumUnknown) {
		t.Errorf("expected unknown platform, got %s", s.Platform.Form)
	}
	for _, f := range Catalog {
		if IsFilled(s, f.Path) {
			t.Errorf("field %s should start unfilled", f.Path)
		}
	}
}

func TestIsFilled(t *testing.T) {
	s := NewSchema()

	tests := []struct {
		name   string
		mutate func() model.Schema
		path   string
		want   bool
	}{
		{
			name:   "empty free text",
			mutate: func() model.Schema { return s },
			path:   FieldIdeaOneLiner,
			want:   false,
		},
		{
			name: "whitespace only free text",
			mutate: func() model.Schema {
				return Merge(s, model.SchemaUpdate{Idea: &model.IdeaUpdate{OneLiner: strPtr("   ")}})
			},
			path: FieldIdeaOneLiner,
			want: false,
		},
		{
			name: "non-empty free text",
			mutate: func() model.Schema {
				return Merge(s, model.SchemaUpdate{Idea: &model.IdeaUpdate{OneLiner: strPtr("a budgeting app")}})
			},
			path: FieldIdeaOneLiner,
			want: true,
		},
		{
			name:   "unknown enum",
			mutate: func() model.Schema { return s },
			path:   FieldPlatformForm,
			want:   false,
		},
		{
			name: "known enum value",
			mutate: func() model.Schema {
				f := model.PlatformWeb
				return Merge(s, model.SchemaUpdate{Platform: &model.PlatformUpdate{Form: &f}})
			},
			path: FieldPlatformForm,
			want: true,
		},
		{
			name: "custom enum value counts as filled",
			mutate: func() model.Schema {
				f := model.PlatformForm("smart fridge")
				return Merge(s, model.SchemaUpdate{Platform: &model.PlatformUpdate{Form: &f}})
			},
			path: FieldPlatformForm,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFilled(tt.mutate(), tt.path); got != tt.want {
				t.Errorf("IsFilled(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}

	if IsFilled(s, "no.such_field") {
		t.Error("unknown path should report unfilled")
	}
}

func coreFilled(t *testing.T) model.Schema {
	t.Helper()
	s := NewSchema()
	form := model.PlatformWeb
	return Merge(s, model.SchemaUpdate{
		Idea:     &model.IdeaUpdate{OneLiner: strPtr("a budgeting app")},
		User:     &model.UserUpdate{PrimaryUser: strPtr("myself")},
		Platform: &model.PlatformUpdate{Form: &form},
	})
}

func TestScore(t *testing.T) {
	pain := model.PainHigh
	form := model.PlatformWeb

	tests := []struct {
		name   string
		update model.SchemaUpdate
		want   int
	}{
		{"empty", model.SchemaUpdate{}, 0},
		{
			"one core field",
			model.SchemaUpdate{Idea: &model.IdeaUpdate{OneLiner: strPtr("an app")}},
			30,
		},
		{
			"two core fields",
			model.SchemaUpdate{
				Idea: &model.IdeaUpdate{OneLiner: strPtr("an app")},
				User: &model.UserUpdate{PrimaryUser: strPtr("me")},
			},
			60,
		},
		{
			"one core plus two supplementary",
			model.SchemaUpdate{
				Idea:    &model.IdeaUpdate{OneLiner: strPtr("an app"), Background: strPtr("long story")},
				Problem: &model.ProblemUpdate{PainLevel: &pain},
			},
			34,
		},
		{
			"three core fields alone",
			model.SchemaUpdate{
				Idea:     &model.IdeaUpdate{OneLiner: strPtr("an app")},
				User:     &model.UserUpdate{PrimaryUser: strPtr("me")},
				Platform: &model.PlatformUpdate{Form: &form},
			},
			90,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Merge(NewSchema(), tt.update)
			if got := Score(s); got != tt.want {
				t.Errorf("Score = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreClampedAt100(t *testing.T) {
	s := coreFilled(t)
	pain := model.PainHigh
	mvpType := model.MVPAITool
	dep := model.DependencyConfirmed
	privacy := model.PrivacyLow
	priority := model.PriorityShipFast
	timeline := model.Timeline14d
	s = Merge(s, model.SchemaUpdate{
		Idea:        &model.IdeaUpdate{Background: strPtr("bg")},
		Problem:     &model.ProblemUpdate{Scenario: strPtr("sc"), PainLevel: &pain},
		User:        &model.UserUpdate{UsageContext: strPtr("uc")},
		MVP:         &model.MVPUpdate{FirstJob: strPtr("fj"), Type: &mvpType},
		Constraints: &model.ConstraintsUpdate{APIOrDataDependency: &dep, PrivacyLevel: &privacy},
		Preference:  &model.PreferenceUpdate{Priority: &priority, Timeline: &timeline},
	})

	// 90 core + 10 supplementary fields at 2 each, clamped.
	if got := Score(s); got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestNextState(t *testing.T) {
	tests := []struct {
		score int
		want  model.ConversationState
	}{
		{0, model.StateAskQuestion},
		{29, model.StateAskQuestion},
		{30, model.StatePreliminaryEval}, // boundary inclusive
		{59, model.StatePreliminaryEval},
		{60, model.StateFullEval},
		{100, model.StateFullEval},
	}

	for _, tt := range tests {
		if got := NextState(tt.score); got != tt.want {
			t.Errorf("NextState(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestCoreFieldDominance(t *testing.T) {
	s := coreFilled(t)
	if got := Score(s); got != 90 {
		t.Errorf("three core fields should score 90, got %d", got)
	}
	if s.Meta.CurrentState != model.StateFullEval {
		t.Errorf("three core fields should reach FULL_EVAL, got %s", s.Meta.CurrentState)
	}
}

func TestMergeKeepsScoreAndStateConsistent(t *testing.T) {
	s := NewSchema()
	updates := []model.SchemaUpdate{
		{Idea: &model.IdeaUpdate{OneLiner: strPtr("an app")}},
		{User: &model.UserUpdate{PrimaryUser: strPtr("students")}},
		{Problem: &model.ProblemUpdate{Scenario: strPtr("every morning")}},
	}

	for _, u := range updates {
		s = Merge(s, u)
		if s.Meta.CompletionScore != Score(s) {
			t.Fatalf("stored score %d != recomputed %d", s.Meta.CompletionScore, Score(s))
		}
		if s.Meta.CurrentState != NextState(s.Meta.CompletionScore) {
			t.Fatalf("stored state %s != derived %s", s.Meta.CurrentState, NextState(s.Meta.CompletionScore))
		}
	}
}

func TestMergeMonotonicForFillOnlyUpdates(t *testing.T) {
	s := NewSchema()
	pain := model.PainMedium
	fillOnly := []model.SchemaUpdate{
		{Idea: &model.IdeaUpdate{OneLiner: strPtr("an app")}},
		{Problem: &model.ProblemUpdate{PainLevel: &pain}},
		{User: &model.UserUpdate{PrimaryUser: strPtr("me")}},
		{MVP: &model.MVPUpdate{FirstJob: strPtr("track spending")}},
	}

	prev := Score(s)
	for i, u := range fillOnly {
		s = Merge(s, u)
		if got := Score(s); got < prev {
			t.Fatalf("update %d decreased score from %d to %d", i, prev, got)
		} else {
			prev = got
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	form := model.PlatformIOS
	u := model.SchemaUpdate{
		Idea:     &model.IdeaUpdate{OneLiner: strPtr("an app")},
		Platform: &model.PlatformUpdate{Form: &form},
	}

	once := Merge(NewSchema(), u)
	twice := Merge(once, u)

	// Only meta timestamps may differ between the two.
	a, b := once, twice
	a.Meta.UpdatedAt, b.Meta.UpdatedAt = once.Meta.CreatedAt, once.Meta.CreatedAt
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated merge changed field content:\n%+v\nvs\n%+v", a, b)
	}
	if twice.Meta.UpdatedAt.Before(once.Meta.UpdatedAt) {
		t.Error("UpdatedAt should not go backwards")
	}
}

func TestMergeUntouchedFieldsSurvive(t *testing.T) {
	s := Merge(NewSchema(), model.SchemaUpdate{
		Idea: &model.IdeaUpdate{OneLiner: strPtr("an app"), Background: strPtr("origin story")},
	})
	s = Merge(s, model.SchemaUpdate{Idea: &model.IdeaUpdate{OneLiner: strPtr("a better app")}})

	if s.Idea.Background != "origin story" {
		t.Errorf("unspecified field was touched: %q", s.Idea.Background)
	}
	if s.Idea.OneLiner != "a better app" {
		t.Errorf("specified field not updated: %q", s.Idea.OneLiner)
	}
	if s.Meta.LastUpdatedField != FieldIdeaOneLiner {
		t.Errorf("LastUpdatedField = %q, want %q", s.Meta.LastUpdatedField, FieldIdeaOneLiner)
	}
}

func TestUnfilledFieldsOrdering(t *testing.T) {
	s := NewSchema()
	unfilled := UnfilledFields(s)

	if len(unfilled) != len(Catalog) {
		t.Fatalf("expected %d unfilled fields, got %d", len(Catalog), len(unfilled))
	}
	wantFirst := []string{FieldIdeaOneLiner, FieldUserPrimaryUser, FieldPlatformForm}
	for i, want := range wantFirst {
		if unfilled[i] != want {
			t.Errorf("position %d = %s, want core field %s", i, unfilled[i], want)
		}
	}

	// Fill one core field; the remaining core fields still lead.
	s = Merge(s, model.SchemaUpdate{Idea: &model.IdeaUpdate{OneLiner: strPtr("an app")}})
	unfilled = UnfilledFields(s)
	if unfilled[0] != FieldUserPrimaryUser || unfilled[1] != FieldPlatformForm {
		t.Errorf("core fields should lead, got %v", unfilled[:2])
	}
}

func TestSummary(t *testing.T) {
	s := NewSchema()
	if Summary(s) != "" {
		t.Errorf("empty schema summary should be empty, got %q", Summary(s))
	}

	form := model.PlatformWeb
	s = Merge(s, model.SchemaUpdate{
		Idea:     &model.IdeaUpdate{OneLiner: strPtr("a budgeting app")},
		Platform: &model.PlatformUpdate{Form: &form},
	})

	sum := Summary(s)
	for _, want := range []string{"Idea: a budgeting app", "Platform: web"} {
		if !strings.Contains(sum, want) {
			t.Errorf("summary missing %q:\n%s", want, sum)
		}
	}
	if strings.Contains(sum, "unknown") {
		t.Errorf("summary should omit unknown enums:\n%s", sum)
	}
}

func TestUpdateForField(t *testing.T) {
	u, ok := UpdateForField(FieldPlatformForm, "ios")
	if !ok {
		t.Fatal("expected known field")
	}
	s := Merge(NewSchema(), u)
	if s.Platform.Form != model.PlatformIOS {
		t.Errorf("Platform.Form = %s, want ios", s.Platform.Form)
	}

	if _, ok := UpdateForField("bogus.path", "x"); ok {
		t.Error("unknown path should not resolve")
	}
}

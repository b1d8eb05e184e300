package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"ideagauge/internal/config"
	"ideagauge/internal/model"
	"ideagauge/internal/repository"
	"ideagauge/internal/schema"
)

// ErrNotEnoughInformation is returned when a report is requested before the
// conversation has reached the full-evaluation state.
var ErrNotEnoughInformation = fmt.Errorf("not enough information for a full report")

// ReportService produces the final scored feasibility report once a
// conversation has gathered enough information.
type ReportService struct {
	client     *GeminiClient
	cfg        *config.AIConfig
	reportRepo repository.ReportRepo
}

// NewReportService creates a new report service.
func NewReportService(client *GeminiClient, cfg *config.AIConfig, reportRepo repository.ReportRepo) *ReportService {
	return &ReportService{client: client, cfg: cfg, reportRepo: reportRepo}
}

// Generate builds, persists, and returns a scored report for a conversation
// in the full-evaluation state. Without an API key it falls back to a
// deterministic mock so local development still produces a report shape.
func (s *ReportService) Generate(ctx context.Context, conv *model.Conversation) (*model.EvaluationReport, error) {
	if conv.Schema.Meta.CurrentState != model.StateFullEval {
		return nil, ErrNotEnoughInformation
	}

	var report *model.EvaluationReport
	if !s.client.IsConfigured() {
		report = s.mockReport(conv)
	} else {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.RespondTimeout)
		defer cancel()

		raw, err := s.client.GenerateJSON(ctx, s.cfg.Models.Report, buildReportPrompt(conv))
		if err != nil {
			return nil, err
		}
		report = &model.EvaluationReport{}
		if err := json.Unmarshal([]byte(raw), report); err != nil {
			log.Printf("[Report] Malformed model reply, using mock: %v", err)
			report = s.mockReport(conv)
		}
	}

	report.ConversationID = conv.ID
	report.CreatedAt = time.Now().UTC()
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Latest returns the most recent report for a conversation.
func (s *ReportService) Latest(ctx context.Context, conversationID string) (*model.EvaluationReport, error) {
	return s.reportRepo.GetByConversation(ctx, conversationID)
}

func buildReportPrompt(conv *model.Conversation) string {
	return fmt.Sprintf(`You are evaluating whether a project idea is feasible for its owner to build.
Return ONLY valid JSON matching this schema:
{
  "verdict": "go" or "caution" or "no_go",
  "summary": "3-4 sentence honest assessment",
  "dimensions": [
    {"name": "feasibility", "score": 0-100, "why": "..."},
    {"name": "demand", "score": 0-100, "why": "..."},
    {"name": "scope_fit", "score": 0-100, "why": "..."},
    {"name": "risk", "score": 0-100, "why": "..."}
  ],
  "risks": ["risk 1", "risk 2"],
  "suggestions": ["concrete next step 1", "concrete next step 2"]
}

Respond in %s. Higher risk score means LOWER risk.

What is known about the idea:
%s

Score each dimension against what a single builder could realistically ship,
and keep the suggestions specific to this idea.`,
		languageName(conv.Language), schema.Summary(conv.Schema))
}

func (s *ReportService) mockReport(conv *model.Conversation) *model.EvaluationReport {
	oneLiner := strings.TrimSpace(conv.Schema.Idea.OneLiner)
	if oneLiner == "" {
		oneLiner = "the described idea"
	}
	return &model.EvaluationReport{
		Verdict: "caution",
		Summary: "Mock report for " + oneLiner + ". Configure GEMINI_API_KEY for a real evaluation.",
		Dimensions: []model.DimensionScore{
			{Name: "feasibility", Score: 60, Why: "Mock score."},
			{Name: "demand", Score: 50, Why: "Mock score."},
			{Name: "scope_fit", Score: 60, Why: "Mock score."},
			{Name: "risk", Score: 50, Why: "Mock score."},
		},
	}
}

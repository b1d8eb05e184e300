package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ideagauge/internal/config"
	"ideagauge/internal/model"
	"ideagauge/internal/schema"
)

// Extractor turns one free-text user message into a partial schema update.
// Implementations are untrusted, fallible external calls.
type Extractor interface {
	Extract(ctx context.Context, message string, s model.Schema, language string) (*model.ExtractionResult, error)
}

// ExtractionService implements Extractor on top of Gemini's JSON-only mode.
type ExtractionService struct {
	client *GeminiClient
	cfg    *config.AIConfig
}

// NewExtractionService creates the extraction adapter.
func NewExtractionService(client *GeminiClient, cfg *config.AIConfig) *ExtractionService {
	return &ExtractionService{client: client, cfg: cfg}
}

// Extract calls the model and parses its structured reply. A malformed reply
// is reported as unavailability; the caller degrades to an empty extraction
// either way.
func (s *ExtractionService) Extract(ctx context.Context, message string, sc model.Schema, language string) (*model.ExtractionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	defer cancel()

	prompt := buildExtractionPrompt(message, sc, language)
	raw, err := s.client.GenerateJSON(ctx, s.cfg.Models.Extract, prompt)
	if err != nil {
		return nil, err
	}

	var result model.ExtractionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		log.Printf("[Extract] Malformed model reply: %v", err)
		return nil, fmt.Errorf("%w: malformed extraction reply", ErrAIUnavailable)
	}
	if strings.TrimSpace(result.Understood) == "" {
		result.Understood = strings.TrimSpace(message)
	}
	return &result, nil
}

func buildExtractionPrompt(message string, sc model.Schema, language string) string {
	var fields strings.Builder
	for _, f := range schema.Catalog {
		current := strings.TrimSpace(f.Value(sc))
		if current == "" {
			current = "(empty)"
		}
		fmt.Fprintf(&fields, "- %s (currently: %s)\n", f.Path, current)
	}

	return fmt.Sprintf(`You are extracting structured facts about a project idea from one user message.
Return ONLY valid JSON matching this schema:
{
  "understood": "one-line paraphrase of what the user said, in %s",
  "extractedFields": {
    "idea": {"one_liner": "...", "background": "..."},
    "problem": {"scenario": "...", "pain_level": "low|medium|high"},
    "user": {"primary_user": "...", "usage_context": "..."},
    "mvp": {"first_job": "...", "type": "content_tool|functional_tool|ai_tool|other"},
    "platform": {"form": "web|ios|android|plugin|cli"},
    "constraints": {"api_or_data_dependency": "none|possible|confirmed", "privacy_level": "low|medium|high"},
    "preference": {"priority": "ship_fast|stable_first|cost_first", "timeline": "7d|14d|30d|flexible"}
  },
  "confidence": 0.0 to 1.0
}

Rules:
1. Include ONLY fields the message actually gives evidence for. Omit everything else entirely.
2. Never guess enum values; omit an enum field when unsure.
3. Do not overwrite a current value unless the message clearly changes it.

Known fields and their current values:
%s
User message: %q`, languageName(language), fields.String(), message)
}

// languageName maps a language tag to the name used inside prompts.
func languageName(lang string) string {
	switch lang {
	case "zh":
		return "Chinese"
	case "ja":
		return "Japanese"
	case "es":
		return "Spanish"
	default:
		return "English"
	}
}

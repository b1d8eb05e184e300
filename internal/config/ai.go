package config

import (
	"os"
	"time"
)

// GeminiModels defines which Gemini models to use for different tasks.
type GeminiModels struct {
	// Extract is for per-message field extraction (needs to be fast).
	Extract string `json:"extract"`

	// Respond is for user-facing response generation.
	Respond string `json:"respond"`

	// Report is for the final scored evaluation report (quality over speed).
	Report string `json:"report"`
}

// AIConfig holds all Gemini-related configuration.
type AIConfig struct {
	APIKey  string       `json:"-"` // Never serialize
	BaseURL string       `json:"baseUrl"`
	Models  GeminiModels `json:"models"`

	ExtractTimeout time.Duration `json:"extractTimeout"`
	RespondTimeout time.Duration `json:"respondTimeout"`
	MaxRetries     int           `json:"maxRetries"`
	BackoffBase    time.Duration `json:"backoffBase"`
}

// DefaultAIConfig returns the default AI configuration.
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			Extract: getEnv("GEMINI_MODEL_EXTRACT", "gemini-2.5-flash"),
			Respond: getEnv("GEMINI_MODEL_RESPOND", "gemini-2.5-flash"),
			Report:  getEnv("GEMINI_MODEL_REPORT", "gemini-2.0-flash"),
		},
		ExtractTimeout: 30 * time.Second,
		RespondTimeout: 45 * time.Second,
		MaxRetries:     3,
		BackoffBase:    time.Second,
	}
}

// IsEnabled returns true if the Gemini API is configured.
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the generateContent endpoint for a model.
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

// StreamEndpoint returns the SSE streaming endpoint for a model.
func (c *AIConfig) StreamEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":streamGenerateContent?alt=sse"
}

package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ideagauge/internal/config"
)

// GeminiClient wraps the Gemini generateContent API. It is constructed
// explicitly and injected into the adapters, never a lazily-initialized
// package global, so tests can point it at a fake server.
type GeminiClient struct {
	cfg        *config.AIConfig
	httpClient *http.Client
}

// NewGeminiClient creates a Gemini API client from config.
func NewGeminiClient(cfg *config.AIConfig) *GeminiClient {
	return &GeminiClient{
		cfg: cfg,
		// Per-call deadlines come from the caller's context; no global
		// client timeout on top of them.
		httpClient: &http.Client{},
	}
}

// IsConfigured returns true if an API key is set.
func (c *GeminiClient) IsConfigured() bool {
	return c.cfg.IsEnabled()
}

type geminiRequest struct {
	Contents         []geminiContent   `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateJSON sends a prompt in JSON-only mode and returns the raw JSON
// text the model produced.
func (c *GeminiClient) GenerateJSON(ctx context.Context, model, prompt string) (string, error) {
	req := geminiRequest{
		Contents:         []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}
	return c.generate(ctx, c.cfg.ModelEndpoint(model), req)
}

// GenerateText sends a prompt and returns the plain-text response.
func (c *GeminiClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	return c.generate(ctx, c.cfg.ModelEndpoint(model), req)
}

// generate performs the request with bounded exponential backoff. Transient
// failures (timeouts, 5xx, rate limits) are retried; auth and malformed
// requests are not.
func (c *GeminiClient) generate(ctx context.Context, endpoint string, reqBody geminiRequest) (string, error) {
	if !c.cfg.IsEnabled() {
		return "", fmt.Errorf("%w: GEMINI_API_KEY not set", ErrAIAuth)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	body, err := c.doRequest(ctx, endpoint, jsonBody)
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: unparseable response: %v", ErrAIUnavailable, err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrAIUnavailable)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// doRequest POSTs with retry. Returns the raw response body.
func (c *GeminiClient) doRequest(ctx context.Context, endpoint string, jsonBody []byte) ([]byte, error) {
	url := endpoint + c.keyParam(endpoint)

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.cfg.BackoffBase * time.Duration(1<<(attempt-1))
			log.Printf("[Gemini] Retry %d/%d in %v", attempt, c.cfg.MaxRetries, backoff)
			select {
			case <-ctx.Done():
				return nil, c.classifyCtx(ctx.Err())
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, c.classifyCtx(ctx.Err())
			}
			log.Printf("[Gemini] Request failed (attempt %d): %v", attempt+1, err)
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if !IsRetryableStatus(resp.StatusCode) {
			log.Printf("[Gemini] Fatal API error %d: %s", resp.StatusCode, truncate(string(body), 200))
			return nil, fmt.Errorf("%w: status %d", ErrAIAuth, resp.StatusCode)
		}

		log.Printf("[Gemini] Transient API error %d (attempt %d)", resp.StatusCode, attempt+1)
		lastErr = fmt.Errorf("status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("%w: retries exhausted: %v", ErrAIUnavailable, lastErr)
}

// StreamText streams a plain-text generation over SSE, invoking onDelta for
// each text chunk, and returns the accumulated full text. The stream itself
// is not retried once the first byte arrives.
func (c *GeminiClient) StreamText(ctx context.Context, model, prompt string, onDelta func(string)) (string, error) {
	if !c.cfg.IsEnabled() {
		return "", fmt.Errorf("%w: GEMINI_API_KEY not set", ErrAIAuth)
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := c.cfg.StreamEndpoint(model)
	url := endpoint + c.keyParam(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", c.classifyCtx(ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if !IsRetryableStatus(resp.StatusCode) {
			return "", fmt.Errorf("%w: status %d", ErrAIAuth, resp.StatusCode)
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrAIUnavailable, resp.StatusCode, truncate(string(body), 200))
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}
		if len(chunk.Candidates) == 0 || len(chunk.Candidates[0].Content.Parts) == 0 {
			continue
		}
		text := chunk.Candidates[0].Content.Parts[0].Text
		if text == "" {
			continue
		}
		full.WriteString(text)
		if onDelta != nil {
			onDelta(text)
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return full.String(), c.classifyCtx(ctx.Err())
		}
		return full.String(), fmt.Errorf("%w: stream read: %v", ErrAIUnavailable, err)
	}

	return full.String(), nil
}

// keyParam appends the API key as a query parameter, accounting for
// endpoints that already carry one (the SSE alt=sse endpoint).
func (c *GeminiClient) keyParam(endpoint string) string {
	if strings.Contains(endpoint, "?") {
		return "&key=" + c.cfg.APIKey
	}
	return "?key=" + c.cfg.APIKey
}

func (c *GeminiClient) classifyCtx(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrAITimeout, err)
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"futures-report/internal/logger"
)

// DeepSeekParams configures the DeepSeek chat-completions client. The
// API key arrives here from bootstrap; the client never reads the
// environment itself.
type DeepSeekParams struct {
	APIKey      string
	Model       string
	Endpoint    string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// DeepSeekGenerator calls the DeepSeek chat-completions API and
// returns the assistant text.
type DeepSeekGenerator struct {
	params DeepSeekParams
	client *http.Client
}

func NewDeepSeekGenerator(params DeepSeekParams) (*DeepSeekGenerator, error) {
	if params.APIKey == "" {
		return nil, errors.New("deepseek api key missing")
	}
	if params.Model == "" {
		params.Model = "deepseek-chat"
	}
	if params.Endpoint == "" {
		params.Endpoint = "https://api.deepseek.com/v1/chat/completions"
	}
	if params.Timeout == 0 {
		params.Timeout = 60 * time.Second
	}
	return &DeepSeekGenerator{
		params: params,
		client: &http.Client{Timeout: params.Timeout},
	}, nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *DeepSeekGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := logger.StartSpan(ctx, "deepseek-generate")
	defer span.End()

	reqBody := map[string]any{
		"model": g.params.Model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens":  g.params.MaxTokens,
		"temperature": g.params.Temperature,
	}

	bb, _ := json.Marshal(reqBody)
	logger.Debug(ctx, "Sending request to DeepSeek", "model", g.params.Model, "prompt_length", len(prompt))

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, "POST", g.params.Endpoint, bytes.NewReader(bb))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.params.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	latency := time.Since(start)
	if err != nil {
		logger.ErrorWithErr(ctx, "DeepSeek API request failed", err, "latency_ms", latency.Milliseconds())
		return "", fmt.Errorf("deepseek request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	logger.Debug(ctx, "Received response from DeepSeek",
		"status_code", resp.StatusCode,
		"latency_ms", latency.Milliseconds(),
		"response_length", len(body),
	)

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Body: string(body)}
		logger.ErrorWithErr(ctx, "DeepSeek API returned error status", apiErr, "status_code", resp.StatusCode)
		return "", apiErr
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode deepseek response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("deepseek response has no choices")
	}

	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("deepseek returned empty content")
	}
	return text, nil
}

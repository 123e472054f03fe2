package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resto-service/internal/util"

	"go.uber.org/zap"
)

// Describer generates short menu descriptions through an OpenAI-compatible
// chat completions endpoint. Any failure, including a missing credential,
// yields a deterministic templated fallback instead of an error; callers
// never see this boundary fail.
type Describer struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDescriber creates a describer. An empty apiKey is valid and means
// fallback-only operation.
func NewDescriber(apiKey, baseURL, model string) *Describer {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Describer{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     util.GetLogger(),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describe returns a short appetizing description for a menu item.
func (d *Describer) Describe(ctx context.Context, name, category string) string {
	if d.apiKey == "" {
		return fallback(name, category)
	}

	prompt := fmt.Sprintf(
		"Write a short, appetizing, mouth-watering description (max 20 words) for a restaurant menu item called %q in the category %q. Do not use quotes.",
		name, category)

	body, err := json.Marshal(chatRequest{
		Model:       d.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   60,
		Temperature: 0.8,
	})
	if err != nil {
		return fallback(name, category)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fallback(name, category)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		d.logger.Warn("Description request failed", zap.Error(err))
		return fallback(name, category)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		d.logger.Warn("Description request refused",
			zap.Int("status", resp.StatusCode))
		return fallback(name, category)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fallback(name, category)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Choices) == 0 {
		return fallback(name, category)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return fallback(name, category)
	}
	return content
}

func fallback(name, category string) string {
	return fmt.Sprintf(
		"Delicious homemade %s prepared with fresh ingredients. A classic %s choice.",
		name, category)
}

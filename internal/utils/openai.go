package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

// AIClient talks to an OpenAI-compatible chat-completions endpoint.
// The HTTP timeout is explicit: a hung completion call must not hold a
// request open forever.
type AIClient struct {
	APIKey  string
	Model   string
	BaseURL string
	DryRun  bool
	HTTP    *http.Client
}

func NewAIClient(apiKey, model, baseURL string, dryRun bool) *AIClient {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &AIClient{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: baseURL,
		DryRun:  dryRun,
		HTTP:    &http.Client{Timeout: 20 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt and returns the draft text.
func (c *AIClient) Complete(ctx context.Context, prompt string) (string, error) {
	// DRY-RUN: no HTTP call, canned draft for local development
	if c.DryRun || c.APIKey == "" {
		log.Printf("[ai][dry-run] prompt_len=%d", len(prompt))
		return "This is a preliminary draft answer. Please consult a licensed physician before acting on any medical advice.", nil
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}

	var result chatResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("parse completion response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("completion api error: %s", result.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || len(result.Choices) == 0 {
		return "", fmt.Errorf("completion failed: status=%d", resp.StatusCode)
	}
	return result.Choices[0].Message.Content, nil
}

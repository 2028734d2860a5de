package companion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Completer is the external model collaborator: a single best-effort call
// per turn, no timeout beyond the HTTP client's own, no retry. Failures come
// back as *UpstreamError.
type Completer interface {
	Complete(ctx context.Context, model string, messages []Prompt, maxTokens int, temperature float64) (string, error)
}

type GroqOptions struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// GroqClient speaks the OpenAI-compatible chat-completions protocol served
// by Groq (and any provider with the same surface).
type GroqClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewGroqClient(opts GroqOptions) *GroqClient {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.groq.com/openai"
	}
	c := opts.HTTPClient
	if c == nil {
		c = &http.Client{Timeout: 60 * time.Second}
	}
	return &GroqClient{
		BaseURL:    base,
		APIKey:     opts.APIKey,
		HTTPClient: c,
	}
}

type chatCompletionsRequest struct {
	Model       string   `json:"model"`
	Messages    []Prompt `json:"messages"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	Stream      bool     `json:"stream"`
}

// OpenAI-compatible (subset) response
type chatCompletionsResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *GroqClient) Complete(ctx context.Context, model string, messages []Prompt, maxTokens int, temperature float64) (string, error) {
	req := chatCompletionsRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", &UpstreamError{Err: fmt.Errorf("http %d: %s", resp.StatusCode, string(b))}
	}

	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &UpstreamError{Err: err}
	}
	if len(out.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

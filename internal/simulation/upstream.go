package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kanonhq/kanon/internal/log"
)

// CompletionService is the upstream AI capability the runner depends on:
// one blocking chat completion per simulation run. The backend itself is an
// opaque collaborator.
type CompletionService interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIConfig configures the OpenAI-compatible completion client.
type OpenAIConfig struct {
	// BaseURL of the compatible API, without the /chat/completions suffix.
	BaseURL string
	// APIKey sent as a Bearer token. Empty disables the Authorization header.
	APIKey string
	// Model identifier passed through to the upstream.
	Model string
	// Temperature for generation. Zero means upstream default.
	Temperature float32
	// MaxTokens caps the response length. Zero means upstream default.
	MaxTokens int
	// Timeout for one completion call. Zero means DefaultCompletionTimeout.
	Timeout time.Duration
}

// DefaultCompletionTimeout bounds a single upstream completion call.
const DefaultCompletionTimeout = 120 * time.Second

// OpenAIClient calls an OpenAI-compatible chat completions endpoint. Any
// backend speaking that dialect works; only the JSON-object response contract
// matters here.
type OpenAIClient struct {
	httpClient *http.Client
	url        string
	cfg        OpenAIConfig
	logger     log.Logger
}

// NewOpenAIClient creates a completion client.
func NewOpenAIClient(cfg OpenAIConfig, logger log.Logger) *OpenAIClient {
	if logger == nil {
		logger = log.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultCompletionTimeout
	}
	return &OpenAIClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		cfg:        cfg,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float32       `json:"temperature,omitempty"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete implements CompletionService. The request asks for a JSON object
// response; callers still parse defensively since not every backend honors
// the format hint.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	req.ResponseFormat = &struct {
		Type string `json:"type"`
	}{Type: "json_object"}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return "", fmt.Errorf("completion endpoint returned %s: %s", resp.Status, string(raw))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response carried no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

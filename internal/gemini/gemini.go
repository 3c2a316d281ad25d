// Package gemini wraps the Google GenAI SDK for the two capabilities kanon
// needs: JSON-mode text generation and text embeddings.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kanonhq/kanon/internal/log"
)

// VectorDimension is the embedding dimensionality stored in pgvector.
// gemini-embedding-001 outputs 3072 dimensions by default and supports
// truncation to 768 via OutputDimensionality; the cases schema uses 768.
const VectorDimension int32 = 768

// ErrNoAPIKey indicates the client was constructed without a Gemini API key.
var ErrNoAPIKey = errors.New("gemini API key not configured")

// Config configures the Gemini client.
type Config struct {
	APIKey        string
	Model         string
	EmbedderModel string
	Temperature   float32
}

// Client is a thin wrapper over the GenAI SDK. Safe for concurrent use.
type Client struct {
	client *genai.Client
	cfg    Config
	logger log.Logger
}

// New creates a Gemini client. Returns ErrNoAPIKey when cfg.APIKey is empty
// so callers can degrade AI-backed features instead of crashing.
func New(ctx context.Context, cfg Config, logger log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if logger == nil {
		logger = log.NewNop()
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Client{client: client, cfg: cfg, logger: logger}, nil
}

// GenerateJSON runs one JSON-mode generation and returns the raw response
// text. Callers parse defensively; the MIME-type hint makes well-formed JSON
// likely, not guaranteed.
func (c *Client) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(c.cfg.Temperature),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model,
		genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return text, nil
}

// GenerateText runs one plain-text generation.
func (c *Client) GenerateText(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.cfg.Temperature),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model,
		genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return text, nil
}

// Embed produces a VectorDimension-sized embedding for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := VectorDimension
	resp, err := c.client.Models.EmbedContent(ctx, c.cfg.EmbedderModel,
		genai.Text(text),
		&genai.EmbedContentConfig{OutputDimensionality: &dim})
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Embeddings[0].Values, nil
}

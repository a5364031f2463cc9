// Package gemini wraps the Google GenAI client shared by plan generation
// and chat.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Config holds Gemini client configuration.
type Config struct {
	APIKey         string
	Model          string
	RequestTimeout time.Duration
}

// DefaultConfig returns default configuration. The request timeout is a
// defensive cap at this layer; the intake core itself imposes none.
func DefaultConfig() Config {
	return Config{
		Model:          "gemini-2.5-flash",
		RequestTimeout: 60 * time.Second,
	}
}

// Client generates text with a Gemini model.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a Gemini client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultConfig().Model
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &Client{client: client, model: cfg.Model, timeout: cfg.RequestTimeout}, nil
}

// Generate produces a single text completion for the prompt. A non-empty
// system instruction is attached to the request.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}

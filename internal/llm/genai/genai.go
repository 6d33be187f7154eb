package genai

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"finagent/internal/llm"
)

// Client generates text through the Google GenAI API.
type Client struct {
	client   *genai.Client
	model    string
	defaults llm.Options
}

// Config configures the GenAI generation client.
type Config struct {
	APIKeyEnv   string
	Model       string
	Temperature float64
	TopP        float64
	MaxTokens   int
}

var _ llm.Provider = (*Client)(nil)

// NewClient creates a GenAI generation client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{
		client: client,
		model:  cfg.Model,
		defaults: llm.Options{
			Temperature: cfg.Temperature,
			TopP:        cfg.TopP,
			MaxTokens:   cfg.MaxTokens,
		},
	}, nil
}

// Generate sends one generation request and returns the produced text
// with token usage.
func (c *Client) Generate(ctx context.Context, system, user string, opts ...llm.Option) (llm.Result, error) {
	o := llm.Apply(c.defaults, opts...)

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(o.Temperature)),
		TopP:            genai.Ptr(float32(o.TopP)),
		MaxOutputTokens: int32(o.MaxTokens),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	if err != nil {
		return llm.Result{}, fmt.Errorf("genai generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return llm.Result{}, fmt.Errorf("no text returned")
	}
	result := llm.Result{Text: text}
	if resp.UsageMetadata != nil {
		result.Usage = llm.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return result, nil
}

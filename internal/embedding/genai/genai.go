package genai

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"finagent/internal/domain"
)

// Client embeds text through the Google GenAI API.
type Client struct {
	client    *genai.Client
	model     string
	dimension int
	taskType  string
}

// Config configures the GenAI embeddings client.
type Config struct {
	APIKeyEnv string
	Model     string
	Dimension int
	TaskType  string
}

var _ domain.Embedder = (*Client)(nil)

// NewClient creates a GenAI embeddings client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-embedding-001"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 768
	}
	if cfg.TaskType == "" {
		cfg.TaskType = "RETRIEVAL_DOCUMENT"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		taskType:  cfg.TaskType,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return fmt.Sprintf("genai:%s", c.model) }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int { return c.dimension }

// Embed generates an embedding for a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := c.client.Models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
		TaskType:             c.taskType,
		OutputDimensionality: genai.Ptr(int32(c.dimension)),
	})
	if err != nil {
		return nil, fmt.Errorf("genai embed failed: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(result.Embeddings))
	}

	vecs := make([][]float64, len(result.Embeddings))
	for i, emb := range result.Embeddings {
		if len(emb.Values) != c.dimension {
			return nil, fmt.Errorf("expected dim %d, got %d", c.dimension, len(emb.Values))
		}
		v := make([]float64, len(emb.Values))
		for j, f := range emb.Values {
			v[j] = float64(f)
		}
		vecs[i] = v
	}
	return vecs, nil
}

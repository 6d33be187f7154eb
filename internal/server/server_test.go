package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finagent/internal/agent"
	"finagent/internal/domain"
	"finagent/internal/llm"
	"finagent/internal/logging"
	"finagent/internal/service"
	"finagent/internal/vectorstore/memory"
)

type stubProvider struct{ text string }

func (s stubProvider) Generate(_ context.Context, _, _ string, _ ...llm.Option) (llm.Result, error) {
	return llm.Result{Text: s.text}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Name() string   { return "stub" }
func (stubEmbedder) Dimension() int { return 2 }
func (stubEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	return []float64{1, 0}, nil
}
func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 0}
	}
	return out, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStorage()
	_, err := store.Upsert(context.Background(),
		[]domain.Chunk{{Text: "the filings mention cloud growth"}},
		[][]float64{{1, 0}},
	)
	require.NoError(t, err)

	provider := stubProvider{text: "Cloud growth is a recurring theme."}
	log := logging.NewNop()
	pipeline := agent.NewPipeline(
		agent.NewPlanner(provider, log),
		agent.NewExecutor(agent.ExecutorConfig{Embedder: stubEmbedder{}, Store: store}, log),
		agent.NewSynthesizer(provider, log),
		log,
	)
	svc := service.NewAgentService(pipeline, filepath.Join(t.TempDir(), "metrics.jsonl"), log)
	return New(svc, log)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestQuery(t *testing.T) {
	t.Run("answers a valid query", func(t *testing.T) {
		app := newTestApp(t)
		req := httptest.NewRequest(http.MethodPost, "/query",
			strings.NewReader(`{"query": "What do the filings say about cloud?"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req, 5000)

		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var body service.Response
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.NotEmpty(t, body.Answer)
		assert.Equal(t, []string{"retriever"}, body.ToolsUsed)
	})

	t.Run("rejects an empty query", func(t *testing.T) {
		app := newTestApp(t)
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"query": ""}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		app := newTestApp(t)
		req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader("not json"))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finagent/internal/domain"
	"finagent/internal/logging"
	"finagent/internal/trend"
	"finagent/internal/vectorstore/memory"
)

func seedStore(t *testing.T) *memory.Storage {
	t.Helper()
	store := memory.NewStorage()
	chunks := []domain.Chunk{
		{Text: "Revenue increased due to cloud growth.", Metadata: map[string]string{"source": "FY23_10K"}},
		{Text: "The company faces supply chain risks.", Metadata: map[string]string{"source": "FY23_10K"}},
	}
	vectors := [][]float64{{1, 0, 0}, {0, 1, 0}}
	_, err := store.Upsert(context.Background(), chunks, vectors)
	require.NoError(t, err)
	return store
}

func TestExecuteRetrieval(t *testing.T) {
	ctx := context.Background()

	t.Run("returns passages ordered by descending score", func(t *testing.T) {
		e := NewExecutor(ExecutorConfig{
			Embedder: &stubEmbedder{vec: []float64{1, 0.2, 0}},
			Store:    seedStore(t),
			TopK:     5,
		}, logging.NewNop())

		state := NewQueryState("what drove the results?")
		state.Intent = domain.IntentRetriever
		state = e.Execute(ctx, state)

		require.Equal(t, domain.StatusOK, state.ToolOutput.Status)
		require.NotNil(t, state.ToolOutput.Retrieval)
		require.Len(t, state.Evidence, 2)
		assert.Greater(t, state.Evidence[0].Score, state.Evidence[1].Score)
		assert.Equal(t, []string{"retriever"}, state.ToolsUsed)
		assert.Empty(t, state.Error)
	})

	t.Run("empty store yields an empty status, not an error", func(t *testing.T) {
		e := NewExecutor(ExecutorConfig{
			Embedder: &stubEmbedder{vec: []float64{1, 0, 0}},
			Store:    memory.NewStorage(),
		}, logging.NewNop())

		state := NewQueryState("anything")
		state.Intent = domain.IntentRetriever
		state = e.Execute(ctx, state)

		assert.Equal(t, domain.StatusEmpty, state.ToolOutput.Status)
		assert.Empty(t, state.Error)
	})

	t.Run("embedder failure becomes an error status and sets the state error", func(t *testing.T) {
		e := NewExecutor(ExecutorConfig{
			Embedder: &stubEmbedder{err: errors.New("embedding service unavailable")},
			Store:    memory.NewStorage(),
		}, logging.NewNop())

		state := NewQueryState("anything")
		state.Intent = domain.IntentRetriever
		state = e.Execute(ctx, state)

		assert.Equal(t, domain.StatusError, state.ToolOutput.Status)
		assert.Equal(t, "embedding service unavailable", state.Error)
	})
}

func TestExecuteGates(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled financial engine redirects to the retriever with a note", func(t *testing.T) {
		e := NewExecutor(ExecutorConfig{
			Embedder:        &stubEmbedder{vec: []float64{1, 0, 0}},
			Store:           seedStore(t),
			EnableFinancial: false,
		}, logging.NewNop())

		state := NewQueryState("revenue growth")
		state.Intent = domain.IntentFinancial
		state = e.Execute(ctx, state)

		assert.True(t, state.Degraded)
		assert.Equal(t, phase2Note, state.ToolOutput.Note)
		assert.Equal(t, []string{"retriever"}, state.ToolsUsed)
	})

	t.Run("disabled plot engine redirects to the retriever with a note", func(t *testing.T) {
		e := NewExecutor(ExecutorConfig{
			Embedder:   &stubEmbedder{vec: []float64{1, 0, 0}},
			Store:      seedStore(t),
			EnablePlot: false,
		}, logging.NewNop())

		state := NewQueryState("plot revenue")
		state.Intent = domain.IntentPlot
		state = e.Execute(ctx, state)

		assert.True(t, state.Degraded)
		assert.Equal(t, phase2Note, state.ToolOutput.Note)
	})

	t.Run("unknown intent falls back to the retriever without degrading", func(t *testing.T) {
		e := NewExecutor(ExecutorConfig{
			Embedder: &stubEmbedder{vec: []float64{1, 0, 0}},
			Store:    seedStore(t),
		}, logging.NewNop())

		state := NewQueryState("hello")
		state = e.Execute(ctx, state)

		assert.False(t, state.Degraded)
		assert.Empty(t, state.ToolOutput.Note)
		assert.Equal(t, []string{"retriever"}, state.ToolsUsed)
	})
}

func TestExecuteFinancial(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FY22.csv"), []byte("Total Revenue\n100\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "FY23.csv"), []byte("Total Revenue\n150\n"), 0o644))

	e := NewExecutor(ExecutorConfig{
		Trend:           trend.NewAnalyzer(dir, logging.NewNop()),
		EnableFinancial: true,
	}, logging.NewNop())

	state := NewQueryState("revenue growth")
	state.Intent = domain.IntentFinancial
	state = e.Execute(context.Background(), state)

	require.Equal(t, domain.StatusOK, state.ToolOutput.Status)
	require.NotNil(t, state.ToolOutput.Trend)
	assert.Equal(t, []string{"financial"}, state.ToolsUsed)
	assert.Empty(t, state.Evidence)
}

func TestExecutePlot(t *testing.T) {
	ctx := context.Background()

	t.Run("renders a chart and records the image path", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "FY22.csv"), []byte("Total Revenue\n100\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "FY23.csv"), []byte("Total Revenue\n150\n"), 0o644))
		chart := &stubChart{path: "static/trend.png"}

		e := NewExecutor(ExecutorConfig{
			Trend:      trend.NewAnalyzer(dir, logging.NewNop()),
			Chart:      chart,
			EnablePlot: true,
		}, logging.NewNop())

		state := NewQueryState("plot revenue")
		state.Intent = domain.IntentPlot
		state = e.Execute(ctx, state)

		require.Equal(t, domain.StatusOK, state.ToolOutput.Status)
		require.NotNil(t, state.ToolOutput.Plot)
		assert.Equal(t, "static/trend.png", state.ImagePath)
		assert.Equal(t, []string{"2022", "2023"}, state.ToolOutput.Plot.YearsPlotted)
		assert.Equal(t, 1, chart.calls)
	})

	t.Run("renderer failure becomes an error status", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "FY22.csv"), []byte("Total Revenue\n100\n"), 0o644))

		e := NewExecutor(ExecutorConfig{
			Trend:      trend.NewAnalyzer(dir, logging.NewNop()),
			Chart:      &stubChart{err: errors.New("disk full")},
			EnablePlot: true,
		}, logging.NewNop())

		state := NewQueryState("plot revenue")
		state.Intent = domain.IntentPlot
		state = e.Execute(ctx, state)

		assert.Equal(t, domain.StatusError, state.ToolOutput.Status)
		assert.Equal(t, "disk full", state.Error)
	})
}

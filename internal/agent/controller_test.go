package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finagent/internal/logging"
)

func TestPipelineRun(t *testing.T) {
	provider := &stubProvider{text: "The report highlights cloud growth."}
	executor := NewExecutor(ExecutorConfig{
		Embedder: &stubEmbedder{vec: []float64{1, 0, 0}},
		Store:    seedStore(t),
	}, logging.NewNop())
	pipeline := NewPipeline(
		NewPlanner(provider, logging.NewNop()),
		executor,
		NewSynthesizer(provider, logging.NewNop()),
		logging.NewNop(),
	)

	state := pipeline.Run(context.Background(), "What does the report say about cloud?")

	require.NotEmpty(t, state.Answer)
	assert.Equal(t, []string{"retriever"}, state.ToolsUsed)
	for _, key := range []string{"planner_latency_s", "tool_latency_s", "llm_latency_s", "total_latency_s"} {
		assert.Contains(t, state.Metrics, key)
	}
}

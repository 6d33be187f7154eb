package eval

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finagent/internal/logging"
	"finagent/internal/service"
)

type scriptedAgent struct {
	responses map[string]service.Response
}

func (a scriptedAgent) Run(_ context.Context, query string) service.Response {
	return a.responses[query]
}

func TestRunnerRun(t *testing.T) {
	ctx := context.Background()
	outputPath := filepath.Join(t.TempDir(), "eval_results.jsonl")
	evaluator := NewEvaluator(&stubProvider{text: `{"score": 0.9}`}, 0.70, logging.NewNop())

	samples := []Sample{
		{Query: "good question"},
		{Query: "silent question"},
	}
	agent := scriptedAgent{responses: map[string]service.Response{
		"good question": {
			Answer: "a grounded answer",
			Evidence: []map[string]any{
				{"text": "passage one", "score": 0.95},
				{"text": "passage two", "score": 0.30},
			},
		},
		"silent question": {},
	}}

	runner := NewRunner(agent, evaluator, outputPath, logging.NewNop())
	records, err := runner.Run(ctx, samples, 0)

	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, 0.9, records[0].Faithfulness)
	assert.Equal(t, 0.5, records[0].ContextRecall)
	assert.Equal(t, 2, records[0].NumChunks)

	assert.Equal(t, "no answer from agent", records[1].Error)
	assert.Zero(t, records[1].Faithfulness)

	f, err := os.Open(outputPath)
	require.NoError(t, err)
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		lines++
	}
	assert.Equal(t, 2, lines)
}

func TestRunnerSampleLimit(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "eval_results.jsonl")
	evaluator := NewEvaluator(&stubProvider{text: `{"score": 1.0}`}, 0.70, logging.NewNop())
	agent := scriptedAgent{responses: map[string]service.Response{
		"q1": {Answer: "a1"},
		"q2": {Answer: "a2"},
	}}
	runner := NewRunner(agent, evaluator, outputPath, logging.NewNop())

	records, err := runner.Run(context.Background(), []Sample{{Query: "q1"}, {Query: "q2"}}, 1)

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, "q1", records[0].Query)
}

func TestPrintSummary(t *testing.T) {
	var sb strings.Builder
	PrintSummary(&sb, []Record{
		{Query: "q1", Faithfulness: 1.0, AnswerRelevancy: 0.8, ContextRecall: 0.6, MeanScore: 0.8},
		{Query: "q2", Faithfulness: 0.5, AnswerRelevancy: 0.5, ContextRecall: 0.5, MeanScore: 0.5},
	})

	out := sb.String()
	assert.Contains(t, out, "FAITHFULNESS")
	assert.Contains(t, out, "AVERAGES")
	assert.Contains(t, out, "faithfulness: 0.750")
}

func TestDefaultValidationSet(t *testing.T) {
	samples := DefaultValidationSet()
	require.Len(t, samples, 10)
	for _, s := range samples {
		assert.NotEmpty(t, s.Query)
		assert.NotEmpty(t, s.ExpectedThemes)
	}
}

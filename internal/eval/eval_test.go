package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"finagent/internal/llm"
	"finagent/internal/logging"
)

type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) Generate(_ context.Context, _, _ string, _ ...llm.Option) (llm.Result, error) {
	if s.err != nil {
		return llm.Result{}, s.err
	}
	return llm.Result{Text: s.text}, nil
}

func TestContextRecall(t *testing.T) {
	t.Run("fraction of scores meeting the threshold", func(t *testing.T) {
		got := ContextRecall([]float64{0.9, 0.75, 0.5}, 0.70)
		assert.Equal(t, 0.667, got)
	})

	t.Run("zero evidence recalls zero", func(t *testing.T) {
		assert.Equal(t, 0.0, ContextRecall(nil, 0.70))
	})

	t.Run("all recalled", func(t *testing.T) {
		assert.Equal(t, 1.0, ContextRecall([]float64{0.71, 0.99}, 0.70))
	})
}

func TestMeanScore(t *testing.T) {
	r := Result{Faithfulness: 0.9, AnswerRelevancy: 0.8, ContextRecall: 0.7}
	assert.Equal(t, 0.8, r.MeanScore())
}

func TestEvaluateSample(t *testing.T) {
	t.Run("scores all three metrics", func(t *testing.T) {
		e := NewEvaluator(&stubProvider{text: `{"score": 0.8}`}, 0.70, logging.NewNop())

		result := e.EvaluateSample(context.Background(), "q", "a",
			[]string{"ctx1", "ctx2"}, []float64{0.9, 0.4})

		assert.Equal(t, 0.8, result.Faithfulness)
		assert.Equal(t, 0.8, result.AnswerRelevancy)
		assert.Equal(t, 0.5, result.ContextRecall)
		assert.Equal(t, 2, result.NumChunks)
	})

	t.Run("judge failures degrade to zero without aborting", func(t *testing.T) {
		e := NewEvaluator(&stubProvider{err: errors.New("timeout")}, 0.70, logging.NewNop())

		result := e.EvaluateSample(context.Background(), "q", "a",
			[]string{"ctx"}, []float64{0.9})

		assert.Equal(t, 0.0, result.Faithfulness)
		assert.Equal(t, 0.0, result.AnswerRelevancy)
		assert.Equal(t, 1.0, result.ContextRecall)
	})
}

func TestRecordPreviewTruncation(t *testing.T) {
	long := make([]byte, 400)
	for i := range long {
		long[i] = 'a'
	}
	r := Result{Query: "q", Answer: string(long)}

	rec := r.Record()

	assert.Len(t, rec.AnswerPreview, 200)
}

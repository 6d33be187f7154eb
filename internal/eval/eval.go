package eval

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"finagent/internal/llm"
)

// DefaultRecallThreshold is the minimum cosine similarity score for a
// passage to count as recalled.
const DefaultRecallThreshold = 0.70

// Result holds the metric scores for one (query, answer, evidence)
// triple. Results are never mutated after construction.
type Result struct {
	Query           string
	Answer          string
	Faithfulness    float64
	AnswerRelevancy float64
	ContextRecall   float64
	NumChunks       int
	LatencyS        float64
	Error           string
}

// MeanScore is the unweighted average of the three metrics rounded to 3
// decimals.
func (r Result) MeanScore() float64 {
	return round3((r.Faithfulness + r.AnswerRelevancy + r.ContextRecall) / 3)
}

// Record is the JSONL shape appended to the evaluation results log.
type Record struct {
	Query           string  `json:"query"`
	AnswerPreview   string  `json:"answer_preview"`
	Faithfulness    float64 `json:"faithfulness"`
	AnswerRelevancy float64 `json:"answer_relevancy"`
	ContextRecall   float64 `json:"context_recall"`
	MeanScore       float64 `json:"mean_score"`
	NumChunks       int     `json:"num_chunks"`
	LatencyS        float64 `json:"latency_s"`
	Error           string  `json:"error,omitempty"`
}

func (r Result) Record() Record {
	return Record{
		Query:           r.Query,
		AnswerPreview:   truncate(r.Answer, 200),
		Faithfulness:    r.Faithfulness,
		AnswerRelevancy: r.AnswerRelevancy,
		ContextRecall:   r.ContextRecall,
		MeanScore:       r.MeanScore(),
		NumChunks:       r.NumChunks,
		LatencyS:        r.LatencyS,
		Error:           r.Error,
	}
}

// Evaluator scores faithfulness and relevancy with LLM-judge calls and
// context recall with a pure numeric heuristic over similarity scores.
type Evaluator struct {
	judge     *Judge
	threshold float64
	log       *zap.Logger
}

func NewEvaluator(provider llm.Provider, threshold float64, log *zap.Logger) *Evaluator {
	if threshold <= 0 {
		threshold = DefaultRecallThreshold
	}
	return &Evaluator{
		judge:     NewJudge(provider, log),
		threshold: threshold,
		log:       log,
	}
}

// EvaluateSample runs all three metrics for a single sample. contexts
// are the retrieved passage texts; scores the matching similarity
// scores. Judge failures degrade individual metrics to 0.0 without
// aborting the sample.
func (e *Evaluator) EvaluateSample(ctx context.Context, query, answer string, contexts []string, scores []float64) Result {
	t0 := time.Now()
	result := Result{Query: query, Answer: answer, NumChunks: len(contexts)}

	combined := strings.Join(contexts, "\n---\n")
	result.Faithfulness = e.judge.ScoreFaithfulness(ctx, query, answer, combined)
	result.AnswerRelevancy = e.judge.ScoreAnswerRelevancy(ctx, query, answer)
	result.ContextRecall = ContextRecall(scores, e.threshold)

	result.LatencyS = round3(time.Since(t0).Seconds())
	e.log.Info("sample evaluated",
		zap.String("query", truncate(query, 60)),
		zap.Float64("faithfulness", result.Faithfulness),
		zap.Float64("relevancy", result.AnswerRelevancy),
		zap.Float64("recall", result.ContextRecall),
		zap.Float64("mean", result.MeanScore()),
	)
	return result
}

// ContextRecall is the fraction of evidence items whose similarity score
// meets the threshold, rounded to 3 decimals. Zero evidence recalls 0.0,
// never an error.
func ContextRecall(scores []float64, threshold float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	recalled := 0
	for _, s := range scores {
		if s >= threshold {
			recalled++
		}
	}
	return round3(float64(recalled) / float64(len(scores)))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

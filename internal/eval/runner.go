package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"go.uber.org/zap"

	"finagent/internal/service"
)

// QueryRunner is the pipeline surface the runner drives: one call per
// validation sample.
type QueryRunner interface {
	Run(ctx context.Context, query string) service.Response
}

// Runner drives the validation set through the full pipeline, scores
// each result and appends records to the JSONL results log.
type Runner struct {
	service    QueryRunner
	evaluator  *Evaluator
	outputPath string
	log        *zap.Logger
}

func NewRunner(svc QueryRunner, evaluator *Evaluator, outputPath string, log *zap.Logger) *Runner {
	return &Runner{service: svc, evaluator: evaluator, outputPath: outputPath, log: log}
}

// Run evaluates up to numSamples entries of the validation set
// (numSamples <= 0 means all) and returns the per-sample records.
func (r *Runner) Run(ctx context.Context, samples []Sample, numSamples int) ([]Record, error) {
	if numSamples > 0 && numSamples < len(samples) {
		samples = samples[:numSamples]
	}
	r.log.Info("starting evaluation", zap.Int("samples", len(samples)))

	records := make([]Record, 0, len(samples))
	for i, sample := range samples {
		r.log.Info("evaluating sample",
			zap.Int("index", i+1),
			zap.Int("total", len(samples)),
			zap.String("query", sample.Query),
		)

		resp := r.service.Run(ctx, sample.Query)
		if resp.Answer == "" {
			records = append(records, Record{Query: sample.Query, Error: "no answer from agent"})
			continue
		}

		contexts, scores := extractEvidence(resp)
		result := r.evaluator.EvaluateSample(ctx, sample.Query, resp.Answer, contexts, scores)
		records = append(records, result.Record())
	}

	if err := r.appendRecords(records); err != nil {
		return records, fmt.Errorf("save eval results: %w", err)
	}
	return records, nil
}

// extractEvidence pulls passage texts and similarity scores out of a
// pipeline response's flattened evidence mappings.
func extractEvidence(resp service.Response) ([]string, []float64) {
	var contexts []string
	var scores []float64
	for _, src := range resp.Evidence {
		text, _ := src["text"].(string)
		if text == "" {
			continue
		}
		contexts = append(contexts, text)
		score, _ := src["score"].(float64)
		scores = append(scores, score)
	}
	return contexts, scores
}

// appendRecords writes the records as JSONL, opening the log in append
// mode so concurrent runs do not lose updates.
func (r *Runner) appendRecords(records []Record) error {
	if err := os.MkdirAll(filepath.Dir(r.outputPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

// PrintSummary writes a formatted result table with per-metric averages.
func PrintSummary(w io.Writer, records []Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no results to summarise")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUERY\tFAITHFULNESS\tRELEVANCY\tCTX RECALL\tMEAN")
	var sumFaith, sumRelev, sumRecall, sumMean float64
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n",
			truncate(rec.Query, 55), rec.Faithfulness, rec.AnswerRelevancy, rec.ContextRecall, rec.MeanScore)
		sumFaith += rec.Faithfulness
		sumRelev += rec.AnswerRelevancy
		sumRecall += rec.ContextRecall
		sumMean += rec.MeanScore
	}
	tw.Flush()

	n := float64(len(records))
	fmt.Fprintf(w, "\nAVERAGES  faithfulness: %.3f | relevancy: %.3f | recall: %.3f | mean: %.3f\n",
		sumFaith/n, sumRelev/n, sumRecall/n, sumMean/n)
}

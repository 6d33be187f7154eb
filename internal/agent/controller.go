package agent

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Pipeline runs the mandatory online path for one query: planner,
// executor, synthesizer, strictly in order. One QueryState per request;
// the pipeline itself holds only read-mostly handles and is safe to share
// across concurrent requests.
type Pipeline struct {
	planner     *Planner
	executor    *Executor
	synthesizer *Synthesizer
	log         *zap.Logger
}

func NewPipeline(planner *Planner, executor *Executor, synthesizer *Synthesizer, log *zap.Logger) *Pipeline {
	return &Pipeline{
		planner:     planner,
		executor:    executor,
		synthesizer: synthesizer,
		log:         log,
	}
}

// Run executes the full pipeline for a query and returns the final state.
func (p *Pipeline) Run(ctx context.Context, query string) QueryState {
	p.log.Info("pipeline start", zap.String("query", truncate(query, 120)))
	t0 := time.Now()
	state := NewQueryState(query)

	ts := time.Now()
	state.Intent, state.IntentReasoning = p.planner.Classify(ctx, query)
	state.recordMetric("planner_latency_s", time.Since(ts).Seconds())
	p.log.Info("intent selected",
		zap.String("intent", string(state.Intent)),
		zap.String("reasoning", state.IntentReasoning),
	)

	ts = time.Now()
	state = p.executor.Execute(ctx, state)
	state.recordMetric("tool_latency_s", time.Since(ts).Seconds())

	ts = time.Now()
	state = p.synthesizer.Compose(ctx, state)
	state.recordMetric("llm_latency_s", time.Since(ts).Seconds())

	state.recordMetric("total_latency_s", time.Since(t0).Seconds())
	p.log.Info("pipeline done",
		zap.String("intent", string(state.Intent)),
		zap.Int("answer_len", len(state.Answer)),
		zap.Bool("degraded", state.Degraded),
	)
	return state
}

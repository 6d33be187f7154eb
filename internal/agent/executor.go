package agent

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"finagent/internal/domain"
	"finagent/internal/trend"
)

const phase2Note = "Financial trend analysis and chart generation are planned for a later phase. " +
	"Searching the narrative report text instead."

// Executor dispatches a classified query to the matching engine and
// normalises the result into the shared tool output envelope. Engine
// failures are converted to an error status on the state; Execute never
// lets one escape.
type Executor struct {
	embedder        domain.Embedder
	store           domain.VectorStore
	trend           *trend.Analyzer
	chart           domain.ChartRenderer
	topK            int
	enableFinancial bool
	enablePlot      bool
	log             *zap.Logger
}

// ExecutorConfig wires the engines the dispatcher may invoke.
type ExecutorConfig struct {
	Embedder        domain.Embedder
	Store           domain.VectorStore
	Trend           *trend.Analyzer
	Chart           domain.ChartRenderer
	TopK            int
	EnableFinancial bool
	EnablePlot      bool
}

func NewExecutor(cfg ExecutorConfig, log *zap.Logger) *Executor {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	return &Executor{
		embedder:        cfg.Embedder,
		store:           cfg.Store,
		trend:           cfg.Trend,
		chart:           cfg.Chart,
		topK:            topK,
		enableFinancial: cfg.EnableFinancial,
		enablePlot:      cfg.EnablePlot,
		log:             log,
	}
}

// Execute invokes the engine selected by the state's intent and returns
// the state with tool output, evidence and the degraded flag populated.
func (e *Executor) Execute(ctx context.Context, state QueryState) QueryState {
	intent := state.Intent

	switch intent {
	case domain.IntentFinancial:
		if !e.enableFinancial {
			e.log.Info("financial engine disabled, redirecting to retriever",
				zap.String("query", truncate(state.Query, 80)))
			state.Degraded = true
			intent = domain.IntentRetriever
		}
	case domain.IntentPlot:
		if !e.enablePlot {
			e.log.Info("plot engine disabled, redirecting to retriever",
				zap.String("query", truncate(state.Query, 80)))
			state.Degraded = true
			intent = domain.IntentRetriever
		}
	case domain.IntentRetriever:
	default:
		e.log.Warn("unknown intent, falling back to retriever", zap.String("intent", string(intent)))
		intent = domain.IntentRetriever
	}

	var output domain.ToolOutput
	var err error
	switch intent {
	case domain.IntentFinancial:
		output = e.trend.Analyze(state.Query)
	case domain.IntentPlot:
		output, err = e.runPlot(state.Query)
	default:
		output, err = e.runRetrieval(ctx, state.Query)
	}
	if err != nil {
		e.log.Error("engine invocation failed", zap.String("intent", string(intent)), zap.Error(err))
		output = domain.ToolOutput{Status: domain.StatusError, Message: err.Error()}
		state.setError(err.Error())
	}
	if output.Status == domain.StatusError {
		state.setError(output.Message)
	}

	// The synthesizer surfaces this note to explain the redirect.
	if state.Degraded {
		output.Note = phase2Note
	}

	state.ToolOutput = output
	state.ToolsUsed = append(state.ToolsUsed, string(intent))
	if output.Retrieval != nil {
		state.Evidence = output.Retrieval.Chunks
	}
	if output.Plot != nil {
		state.ImagePath = output.Plot.ImagePath
	}
	return state
}

func (e *Executor) runRetrieval(ctx context.Context, query string) (domain.ToolOutput, error) {
	vector, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return domain.ToolOutput{}, err
	}
	passages, err := e.store.Search(ctx, vector, e.topK, nil)
	if err != nil {
		return domain.ToolOutput{}, err
	}
	if len(passages) == 0 {
		e.log.Warn("no results for query", zap.String("query", truncate(query, 80)))
		return domain.ToolOutput{
			Status:    domain.StatusEmpty,
			Message:   "no relevant documents found",
			Retrieval: &domain.RetrievalResult{Query: query},
		}, nil
	}
	e.log.Info("retrieval complete",
		zap.Int("chunks", len(passages)),
		zap.Float64("top_score", passages[0].Score),
	)
	return domain.ToolOutput{
		Status: domain.StatusOK,
		Retrieval: &domain.RetrievalResult{
			Query:      query,
			ChunkCount: len(passages),
			Chunks:     passages,
		},
	}, nil
}

func (e *Executor) runPlot(query string) (domain.ToolOutput, error) {
	metricLabel, valuesByYear, err := e.trend.Collect(query)
	if err != nil {
		return domain.ToolOutput{}, err
	}
	if len(valuesByYear) == 0 {
		return domain.ToolOutput{
			Status:  domain.StatusNoData,
			Message: "no numeric data found in structured extracts to plot",
		}, nil
	}
	path, err := e.chart.Render(metricLabel, valuesByYear)
	if err != nil {
		return domain.ToolOutput{}, err
	}
	years := make([]string, 0, len(valuesByYear))
	for y := range valuesByYear {
		years = append(years, y)
	}
	sort.Strings(years)
	return domain.ToolOutput{
		Status: domain.StatusOK,
		Plot: &domain.PlotResult{
			Metric:       metricLabel,
			YearsPlotted: years,
			ImagePath:    path,
		},
	}, nil
}

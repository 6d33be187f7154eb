package agent

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"finagent/internal/domain"
	"finagent/internal/llm"
)

// Keyword routing vocabularies, in priority order: a visualization match
// wins over a financial match when a query contains both.
var (
	plotKeywords = []string{
		"plot", "chart", "graph", "visuali", "show trend", "bar chart", "line chart",
	}
	financialKeywords = []string{
		"revenue", "growth", "compare", "comparison", "trend", "income",
		"profit", "operating", "year over year", "yoy", "fiscal", "earnings",
		"sales", "margin",
	}
)

const fallbackReasoning = "fallback due to classification error"

const classifierSystemPrompt = "You are a routing agent. Given a user query about annual disclosure reports, " +
	"classify it into exactly one of these categories:\n" +
	"  - 'retriever' : narrative, qualitative, or risk questions\n" +
	"  - 'financial' : quantitative trend or number analysis\n" +
	"  - 'plot'      : requests for a chart, graph, or visualization\n\n" +
	"Reply ONLY with valid JSON: {\"tool\": \"<category>\", \"reason\": \"<one sentence>\"}"

// Planner classifies a query into an intent: deterministic keyword
// routing first, LLM-assisted disambiguation as fallback.
type Planner struct {
	provider llm.Provider
	log      *zap.Logger
}

func NewPlanner(provider llm.Provider, log *zap.Logger) *Planner {
	return &Planner{provider: provider, log: log}
}

// Classify returns the intent for a query with a human-readable
// reasoning. It never fails: any LLM error maps to the retriever
// fallback.
func (p *Planner) Classify(ctx context.Context, query string) (domain.Intent, string) {
	if intent, ok := keywordRoute(query); ok {
		return intent, "keyword-based routing"
	}
	p.log.Debug("no keyword match, falling back to LLM routing", zap.String("query", query))
	return p.llmRoute(ctx, query)
}

func keywordRoute(query string) (domain.Intent, bool) {
	lower := strings.ToLower(query)
	for _, kw := range plotKeywords {
		if strings.Contains(lower, kw) {
			return domain.IntentPlot, true
		}
	}
	for _, kw := range financialKeywords {
		if strings.Contains(lower, kw) {
			return domain.IntentFinancial, true
		}
	}
	return domain.IntentUnknown, false
}

// llmRoute asks the LLM to classify the query. Routing must be
// reproducible, so the call runs at temperature zero.
func (p *Planner) llmRoute(ctx context.Context, query string) (domain.Intent, string) {
	result, err := p.provider.Generate(ctx, classifierSystemPrompt, query,
		llm.WithTemperature(0),
		llm.WithTopP(1),
		llm.WithMaxTokens(80),
	)
	if err != nil {
		p.log.Warn("LLM routing failed, defaulting to retriever", zap.Error(err))
		return domain.IntentRetriever, fallbackReasoning
	}

	var parsed struct {
		Tool   string `json:"tool"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(result.Text)), &parsed); err != nil {
		p.log.Warn("unparseable routing response, defaulting to retriever",
			zap.String("raw", truncate(result.Text, 200)))
		return domain.IntentRetriever, fallbackReasoning
	}

	intent := domain.Intent(strings.ToLower(strings.TrimSpace(parsed.Tool)))
	switch intent {
	case domain.IntentRetriever, domain.IntentFinancial, domain.IntentPlot:
	default:
		return domain.IntentRetriever, fallbackReasoning
	}
	reason := parsed.Reason
	if reason == "" {
		reason = "LLM classification"
	}
	return intent, reason
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

package domain

// Intent is the classified category of a query, deciding which engine
// handles it.
type Intent string

const (
	IntentRetriever Intent = "retriever"
	IntentFinancial Intent = "financial"
	IntentPlot      Intent = "plot"
	IntentUnknown   Intent = "unknown"
)

// Chunk is one pre-chunked unit of disclosure text plus its metadata,
// produced by the (external) ingestion pipeline and consumed for indexing.
type Chunk struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Passage is one retrieved unit of text with its cosine similarity score
// and payload metadata. Passages are immutable once returned by a search.
type Passage struct {
	ID       string            `json:"id"`
	Score    float64           `json:"score"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// Flatten merges the metadata keys alongside id/score/text into a single
// mapping, the shape exposed to API consumers and the evaluation harness.
func (p Passage) Flatten() map[string]any {
	out := make(map[string]any, len(p.Metadata)+3)
	for k, v := range p.Metadata {
		out[k] = v
	}
	out["id"] = p.ID
	out["score"] = p.Score
	out["text"] = p.Text
	return out
}

// ToolStatus tags a ToolOutput with the outcome of the engine invocation.
type ToolStatus string

const (
	StatusOK            ToolStatus = "ok"
	StatusEmpty         ToolStatus = "empty"
	StatusNoData        ToolStatus = "no_data"
	StatusNoNumericData ToolStatus = "no_numeric_data"
	StatusError         ToolStatus = "error"
)

// RetrievalResult carries the passages returned by the retrieval engine.
type RetrievalResult struct {
	Query      string    `json:"query"`
	ChunkCount int       `json:"chunk_count"`
	Chunks     []Passage `json:"chunks"`
}

// TrendResult is the structured output of the trend engine. YoYGrowthPct
// is nil for the earliest year (no prior baseline) and whenever the prior
// year value is zero or missing. AvailableColumns and MatchingColumns are
// diagnostics populated only on the no_data / no_numeric_data paths.
type TrendResult struct {
	MetricLabel      string              `json:"metric"`
	ValuesByYear     map[string]float64  `json:"values_by_year,omitempty"`
	YoYGrowthPct     map[string]*float64 `json:"yoy_growth_pct,omitempty"`
	ColumnsUsed      []string            `json:"columns_used,omitempty"`
	AvailableColumns []string            `json:"available_columns,omitempty"`
	MatchingColumns  []string            `json:"matching_columns,omitempty"`
}

// PlotResult carries the rendered chart location.
type PlotResult struct {
	Metric       string   `json:"metric"`
	YearsPlotted []string `json:"years_plotted,omitempty"`
	ImagePath    string   `json:"image_path,omitempty"`
}

// ToolOutput is the envelope every engine invocation is normalised into.
// Exactly one of Retrieval/Trend/Plot is set for a successful call; Note
// carries an in-band message the synthesizer must surface verbatim.
type ToolOutput struct {
	Status    ToolStatus       `json:"status"`
	Message   string           `json:"message,omitempty"`
	Retrieval *RetrievalResult `json:"retrieval,omitempty"`
	Trend     *TrendResult     `json:"trend,omitempty"`
	Plot      *PlotResult      `json:"plot,omitempty"`
	Note      string           `json:"phase2_note,omitempty"`
}

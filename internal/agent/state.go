package agent

import (
	"math"

	"finagent/internal/domain"
)

// QueryState is the single record threaded through the pipeline. Each
// stage receives the previous stage's value and returns a new one;
// nothing mutates a state another stage still holds.
type QueryState struct {
	Query           string
	Intent          domain.Intent
	IntentReasoning string
	Evidence        []domain.Passage
	ToolOutput      domain.ToolOutput
	ToolsUsed       []string
	Answer          string
	ImagePath       string
	Degraded        bool
	Error           string
	Metrics         map[string]float64
}

func NewQueryState(query string) QueryState {
	return QueryState{
		Query:   query,
		Intent:  domain.IntentUnknown,
		Metrics: map[string]float64{},
	}
}

// setError records the first fatal error; later stages never clear or
// overwrite it.
func (s *QueryState) setError(msg string) {
	if s.Error == "" {
		s.Error = msg
	}
}

// recordMetric appends a stage timing; existing keys are never
// overwritten.
func (s *QueryState) recordMetric(stage string, seconds float64) {
	if _, ok := s.Metrics[stage]; ok {
		return
	}
	s.Metrics[stage] = math.Round(seconds*1000) / 1000
}

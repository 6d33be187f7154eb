package agent

import (
	"context"
	"sync"

	"finagent/internal/llm"
)

// stubProvider is a scripted llm.Provider recording every call.
type stubProvider struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	systems []string
	users   []string
}

func (s *stubProvider) Generate(_ context.Context, system, user string, _ ...llm.Option) (llm.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.systems = append(s.systems, system)
	s.users = append(s.users, user)
	if s.err != nil {
		return llm.Result{}, s.err
	}
	return llm.Result{Text: s.text}, nil
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubProvider) lastUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.users) == 0 {
		return ""
	}
	return s.users[len(s.users)-1]
}

// stubEmbedder returns a fixed vector for every input.
type stubEmbedder struct {
	vec []float64
	err error
}

func (e *stubEmbedder) Name() string   { return "stub" }
func (e *stubEmbedder) Dimension() int { return len(e.vec) }

func (e *stubEmbedder) Embed(_ context.Context, _ string) ([]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

func (e *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = e.vec
	}
	return out, nil
}

// stubChart records render calls and returns a fixed path.
type stubChart struct {
	path   string
	err    error
	calls  int
	metric string
}

func (c *stubChart) Render(metricLabel string, _ map[string]float64) (string, error) {
	c.calls++
	c.metric = metricLabel
	if c.err != nil {
		return "", c.err
	}
	return c.path, nil
}

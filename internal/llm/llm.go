package llm

import "context"

// Usage reports token accounting for one generation call.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Result is the text produced by a generation call plus its token usage.
type Result struct {
	Text  string
	Usage Usage
}

// Options carries the optional parameters of a generation call.
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// Option mutates generation Options.
type Option func(*Options)

func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = t }
}

func WithTopP(p float64) Option {
	return func(o *Options) { o.TopP = p }
}

func WithMaxTokens(n int) Option {
	return func(o *Options) { o.MaxTokens = n }
}

// Apply folds the given options over a set of defaults.
func Apply(defaults Options, opts ...Option) Options {
	o := defaults
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Provider is the contract for any hosted generation backend: given a
// system instruction and a user message, it returns generated text plus
// token usage. Calls are single-attempt; callers translate failures into
// their own degraded state rather than retrying.
type Provider interface {
	Generate(ctx context.Context, system, user string, opts ...Option) (Result, error)
}

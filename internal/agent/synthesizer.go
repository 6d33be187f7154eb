package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"finagent/internal/llm"
)

const synthesizerSystemPrompt = "You are a financial intelligence assistant specialising in annual disclosure reports. " +
	"Use the provided tool output to give a clear, concise, factual answer. " +
	"If the tool output mentions a phase2_note, include it politely in your answer. " +
	"If numeric data is present, highlight key figures. " +
	"Keep the answer under 300 words."

const rawOutputPreviewLimit = 500

// Synthesizer composes the final natural-language answer from the
// dispatcher's output. Every path produces a non-empty answer: upstream
// errors and LLM failures map to templated text instead.
type Synthesizer struct {
	provider llm.Provider
	log      *zap.Logger
}

func NewSynthesizer(provider llm.Provider, log *zap.Logger) *Synthesizer {
	return &Synthesizer{provider: provider, log: log}
}

// Compose sets the state's answer. When an upstream error is present the
// answer explains it and no LLM call is made.
func (s *Synthesizer) Compose(ctx context.Context, state QueryState) QueryState {
	if state.Error != "" {
		state.Answer = fmt.Sprintf(
			"I encountered an error while processing your request: %s. "+
				"Please ensure the documents have been ingested and try again.",
			state.Error,
		)
		return state
	}

	toolJSON, err := json.Marshal(state.ToolOutput)
	if err != nil {
		toolJSON = []byte("{}")
	}
	userMsg := buildUserMessage(state.Query, string(toolJSON))

	result, err := s.provider.Generate(ctx, synthesizerSystemPrompt, userMsg)
	if err != nil {
		s.log.Error("synthesizer LLM call failed", zap.Error(err))
		state.Answer = fmt.Sprintf(
			"I was unable to generate a response due to an LLM error. Raw tool output: %s",
			truncate(string(toolJSON), rawOutputPreviewLimit),
		)
		return state
	}

	s.log.Info("answer composed",
		zap.Int("answer_len", len(result.Text)),
		zap.Int("tokens_in", result.Usage.InputTokens),
		zap.Int("tokens_out", result.Usage.OutputTokens),
	)
	state.Answer = result.Text
	return state
}

func buildUserMessage(query, toolJSON string) string {
	return fmt.Sprintf(
		"User Question: %s\n\nTool Output (JSON):\n%s\n\nPlease provide a clear, factual answer based on the tool output.",
		query, toolJSON,
	)
}

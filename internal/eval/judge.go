package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"finagent/internal/llm"
)

const faithfulnessSystemPrompt = "You are an evaluation judge. Given a QUESTION, an ANSWER, and CONTEXT passages, " +
	"score how faithful the answer is to the context. " +
	"A faithful answer contains only information that can be inferred from the context. " +
	"Respond ONLY with JSON: {\"score\": <float between 0.0 and 1.0>}. No other text."

const relevancySystemPrompt = "You are an evaluation judge. Given a QUESTION and an ANSWER, " +
	"score how relevant the answer is to the question. " +
	"A relevant answer directly addresses what was asked without unnecessary information. " +
	"Respond ONLY with JSON: {\"score\": <float between 0.0 and 1.0>}. No other text."

// scoreRe extracts the first float literal in [0, 1] from free-form
// judge output when strict JSON parsing fails.
var scoreRe = regexp.MustCompile(`\b([01](?:\.\d+)?)\b`)

// Judge wraps the LLM to score evaluation metrics. Prompts are
// deliberately simple: ask for a single JSON object with a score field.
type Judge struct {
	provider llm.Provider
	log      *zap.Logger
}

func NewJudge(provider llm.Provider, log *zap.Logger) *Judge {
	return &Judge{provider: provider, log: log}
}

// ScoreFaithfulness asks whether every claim in the answer is supported
// by the context: 1.0 fully grounded, 0.0 hallucinated.
func (j *Judge) ScoreFaithfulness(ctx context.Context, query, answer, context_ string) float64 {
	user := fmt.Sprintf(
		"QUESTION: %s\n\nCONTEXT:\n%s\n\nANSWER: %s\n\nScore faithfulness (0.0 = not grounded, 1.0 = fully grounded).",
		query, truncate(context_, 3000), truncate(answer, 1000),
	)
	return j.score(ctx, faithfulnessSystemPrompt, user)
}

// ScoreAnswerRelevancy asks whether the answer addresses the question:
// 1.0 directly answers it, 0.0 off-topic.
func (j *Judge) ScoreAnswerRelevancy(ctx context.Context, query, answer string) float64 {
	user := fmt.Sprintf(
		"QUESTION: %s\n\nANSWER: %s\n\nScore answer relevancy (0.0 = off-topic, 1.0 = perfectly addresses the question).",
		query, truncate(answer, 1000),
	)
	return j.score(ctx, relevancySystemPrompt, user)
}

// score runs one judge call at temperature zero. A failing call scores
// 0.0 and is logged, never fatal.
func (j *Judge) score(ctx context.Context, system, user string) float64 {
	result, err := j.provider.Generate(ctx, system, user,
		llm.WithTemperature(0),
		llm.WithMaxTokens(128),
	)
	if err != nil {
		j.log.Error("judge call failed", zap.Error(err))
		return 0.0
	}
	return j.parseScore(result.Text)
}

// parseScore extracts the score from model output: JSON first, then a
// regex fallback over the first float literal. Unparseable output scores
// 0.0.
func (j *Judge) parseScore(raw string) float64 {
	raw = strings.TrimSpace(raw)

	var parsed struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return clamp01(parsed.Score)
	}

	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return clamp01(f)
		}
	}

	j.log.Warn("could not parse judge score", zap.String("raw", truncate(raw, 200)))
	return 0.0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

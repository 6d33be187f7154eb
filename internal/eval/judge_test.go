package eval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"finagent/internal/logging"
)

func TestParseScore(t *testing.T) {
	j := NewJudge(&stubProvider{}, logging.NewNop())

	cases := []struct {
		name string
		raw  string
		want float64
	}{
		{"strict json", `{"score": 0.85}`, 0.85},
		{"json with surrounding whitespace", "  {\"score\": 1.0}\n", 1.0},
		{"regex fallback in prose", "I would rate this answer 0.7 out of 1.", 0.7},
		{"bare float", "0.9", 0.9},
		{"out of range clamps high", `{"score": 1.7}`, 1.0},
		{"out of range clamps low", `{"score": -0.3}`, 0.0},
		{"pure prose scores zero", "The answer looks reasonable to me.", 0.0},
		{"empty scores zero", "", 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, j.parseScore(tc.raw))
		})
	}
}

func TestScoreNeverFails(t *testing.T) {
	j := NewJudge(&stubProvider{err: errors.New("boom")}, logging.NewNop())

	got := j.ScoreFaithfulness(context.Background(), "q", "a", "ctx")

	assert.Equal(t, 0.0, got)
}

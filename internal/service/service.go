package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"finagent/internal/agent"
)

// Response is the single contract the core exposes to its callers
// (CLI, HTTP, evaluation harness).
type Response struct {
	Answer    string             `json:"answer"`
	ToolsUsed []string           `json:"tools_used"`
	Evidence  []map[string]any   `json:"evidence"`
	ImagePath string             `json:"image_path,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
	Error     string             `json:"error,omitempty"`
}

// AgentService is the entry-point facade: it runs the pipeline, tracks
// per-request metrics and persists them to an append-only JSONL log.
type AgentService struct {
	pipeline    *agent.Pipeline
	metricsPath string
	log         *zap.Logger
}

func NewAgentService(pipeline *agent.Pipeline, metricsPath string, log *zap.Logger) *AgentService {
	return &AgentService{pipeline: pipeline, metricsPath: metricsPath, log: log}
}

// Run executes the agent pipeline for a user query. Every outcome,
// including a panicking engine, yields a non-empty answer.
func (s *AgentService) Run(ctx context.Context, query string) (resp Response) {
	t0 := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("pipeline panic", zap.Any("panic", r))
			resp = Response{
				Answer:  fmt.Sprintf("Agent encountered an unrecoverable error: %v", r),
				Metrics: map[string]float64{},
				Error:   fmt.Sprintf("%v", r),
			}
		}
		resp.Metrics["total_service_latency_s"] = round3(time.Since(t0).Seconds())
		s.saveMetrics(query, resp)
	}()

	state := s.pipeline.Run(ctx, query)

	evidence := make([]map[string]any, 0, len(state.Evidence))
	for _, p := range state.Evidence {
		evidence = append(evidence, p.Flatten())
	}
	resp = Response{
		Answer:    state.Answer,
		ToolsUsed: state.ToolsUsed,
		Evidence:  evidence,
		ImagePath: state.ImagePath,
		Metrics:   state.Metrics,
		Error:     state.Error,
	}
	return resp
}

// saveMetrics appends one record per request. The file is opened in
// append mode per write so concurrent requests do not lose updates.
func (s *AgentService) saveMetrics(query string, resp Response) {
	record := map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"query":     truncate(query, 100),
		"tools":     resp.ToolsUsed,
		"image":     resp.ImagePath != "",
		"error":     resp.Error != "",
	}
	for k, v := range resp.Metrics {
		record[k] = v
	}
	if err := appendJSONL(s.metricsPath, record); err != nil {
		s.log.Warn("could not save metrics", zap.Error(err))
	}
}

func appendJSONL(path string, record any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

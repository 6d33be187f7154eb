package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Embedder.Type)
	assert.Equal(t, 32, cfg.Embedder.BatchSize)
	assert.Equal(t, 5, cfg.VectorStore.TopK)
	assert.Equal(t, 0.70, cfg.Eval.RecallThreshold)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
embedder:
  type: openai
  openai:
    model: text-embedding-3-large
llm:
  type: openai
  openai: {}
vector_store:
  type: memory
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, 1536, cfg.Embedder.OpenAI.Dimension)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, 1024, cfg.LLM.MaxTokens)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, filepath.Join("data", "structured"), cfg.Trend.StructuredDir)
	assert.Equal(t, filepath.Join("logs", "agent.log"), cfg.Log.File)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.VectorStore.TopK = 8
	cfg.Agent.EnableFinancial = true

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 8, loaded.VectorStore.TopK)
	assert.True(t, loaded.Agent.EnableFinancial)
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embedder: [unclosed"), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible
// embeddings endpoint.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GenAIEmbedderConfig holds configuration for the Google GenAI embeddings
// endpoint.
type GenAIEmbedderConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
	TaskType  string `yaml:"task_type"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type      string                `yaml:"type"`
	BatchSize int                   `yaml:"batch_size"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
	GenAI     *GenAIEmbedderConfig  `yaml:"genai,omitempty"`
}

// OpenAILLMConfig configures an OpenAI-compatible chat completions endpoint.
type OpenAILLMConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GenAILLMConfig configures the Google GenAI generation endpoint.
type GenAILLMConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// LLMConfig selects and configures the generation model used by the
// synthesizer, the routing fallback and the evaluation judge.
type LLMConfig struct {
	Type        string           `yaml:"type"`
	Temperature float64          `yaml:"temperature"`
	TopP        float64          `yaml:"top_p"`
	MaxTokens   int              `yaml:"max_tokens"`
	OpenAI      *OpenAILLMConfig `yaml:"openai,omitempty"`
	GenAI       *GenAILLMConfig  `yaml:"genai,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	TopK   int           `yaml:"top_k"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// AgentConfig gates the engines the dispatcher may invoke. Gated intents
// are redirected to the retriever with a degraded-path note.
type AgentConfig struct {
	EnableFinancial bool `yaml:"enable_financial"`
	EnablePlot      bool `yaml:"enable_plot"`
}

// TrendConfig locates the structured tabular extracts.
type TrendConfig struct {
	StructuredDir string `yaml:"structured_dir"`
}

// ChartConfig configures trend chart rendering.
type ChartConfig struct {
	OutputPath string `yaml:"output_path"`
}

// EvalConfig configures the evaluation harness.
type EvalConfig struct {
	ResultsPath     string  `yaml:"results_path"`
	RecallThreshold float64 `yaml:"recall_threshold"`
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures structured logging output.
type LogConfig struct {
	File    string `yaml:"file"`
	Metrics string `yaml:"metrics"`
	Debug   bool   `yaml:"debug"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder    EmbedderConfig    `yaml:"embedder"`
	LLM         LLMConfig         `yaml:"llm"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Agent       AgentConfig       `yaml:"agent"`
	Trend       TrendConfig       `yaml:"trend"`
	Chart       ChartConfig       `yaml:"chart"`
	Eval        EvalConfig        `yaml:"eval"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/finagent/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "finagent", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{
			Type: "openai",
			OpenAI: &OpenAIEmbedderConfig{
				BaseURL:   "https://api.openai.com/v1",
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "text-embedding-3-small",
			},
		},
		LLM: LLMConfig{
			Type: "openai",
			OpenAI: &OpenAILLMConfig{
				BaseURL:   "https://api.openai.com/v1",
				APIKeyEnv: "OPENAI_API_KEY",
				Model:     "gpt-4o-mini",
			},
		},
		VectorStore: VectorStoreConfig{
			Type: "qdrant",
			Qdrant: &QdrantConfig{
				URL:        "http://localhost:6333",
				Collection: "disclosure_reports",
			},
		},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Embedder.BatchSize == 0 {
		cfg.Embedder.BatchSize = 32
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.Dimension == 0 {
			cfg.Embedder.OpenAI.Dimension = 1536
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "genai" && cfg.Embedder.GenAI != nil {
		if cfg.Embedder.GenAI.APIKeyEnv == "" {
			cfg.Embedder.GenAI.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Embedder.GenAI.Model == "" {
			cfg.Embedder.GenAI.Model = "gemini-embedding-001"
		}
		if cfg.Embedder.GenAI.Dimension == 0 {
			cfg.Embedder.GenAI.Dimension = 768
		}
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.2
	}
	if cfg.LLM.TopP == 0 {
		cfg.LLM.TopP = 0.9
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1024
	}
	if cfg.LLM.Type == "openai" && cfg.LLM.OpenAI != nil {
		if cfg.LLM.OpenAI.BaseURL == "" {
			cfg.LLM.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.LLM.OpenAI.APIKeyEnv == "" {
			cfg.LLM.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.LLM.OpenAI.Model == "" {
			cfg.LLM.OpenAI.Model = "gpt-4o-mini"
		}
		if cfg.LLM.OpenAI.TimeoutSecs == 0 {
			cfg.LLM.OpenAI.TimeoutSecs = 60
		}
	}
	if cfg.LLM.Type == "genai" && cfg.LLM.GenAI != nil {
		if cfg.LLM.GenAI.APIKeyEnv == "" {
			cfg.LLM.GenAI.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.LLM.GenAI.Model == "" {
			cfg.LLM.GenAI.Model = "gemini-2.0-flash"
		}
	}
	if cfg.VectorStore.TopK == 0 {
		cfg.VectorStore.TopK = 5
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Collection == "" {
			cfg.VectorStore.Qdrant.Collection = "disclosure_reports"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}
	if cfg.Trend.StructuredDir == "" {
		cfg.Trend.StructuredDir = filepath.Join("data", "structured")
	}
	if cfg.Chart.OutputPath == "" {
		cfg.Chart.OutputPath = filepath.Join("static", "trend.png")
	}
	if cfg.Eval.ResultsPath == "" {
		cfg.Eval.ResultsPath = filepath.Join("logs", "eval_results.jsonl")
	}
	if cfg.Eval.RecallThreshold == 0 {
		cfg.Eval.RecallThreshold = 0.70
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join("logs", "agent.log")
	}
	if cfg.Log.Metrics == "" {
		cfg.Log.Metrics = filepath.Join("logs", "metrics.jsonl")
	}
}

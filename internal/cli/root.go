package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finagent/internal/agent"
	"finagent/internal/chart"
	"finagent/internal/config"
	"finagent/internal/domain"
	"finagent/internal/embedding/genai"
	"finagent/internal/embedding/openai"
	"finagent/internal/llm"
	llmgenai "finagent/internal/llm/genai"
	llmopenai "finagent/internal/llm/openai"
	"finagent/internal/logging"
	"finagent/internal/service"
	"finagent/internal/trend"
	"finagent/internal/vectorstore/memory"
	"finagent/internal/vectorstore/qdrant"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "finagent",
	Short: "Question answering agent over financial disclosure reports",
	Long: "finagent answers natural-language questions over ingested financial " +
		"disclosure reports. It routes each question to a document retriever, " +
		"a year-over-year trend analyzer or a chart generator, and composes " +
		"the result into a grounded answer.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (defaults to ./config.yaml, then ~/.config/finagent/config.yaml)")
	rootCmd.AddCommand(queryCmd, chatCmd, indexCmd, evalCmd, serveCmd)
}

func loadConfig() (*config.AppConfig, error) {
	if cfgPath != "" {
		return config.Load(cfgPath)
	}
	cfg, _, err := config.LoadDefault()
	return cfg, err
}

// runtime bundles the assembled components shared by the subcommands.
type runtime struct {
	cfg      *config.AppConfig
	log      *zap.Logger
	embedder domain.Embedder
	store    domain.VectorStore
	provider llm.Provider
	service  *service.AgentService
}

func (r *runtime) close() {
	_ = r.log.Sync()
}

func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Log.File, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	embedder, err := buildEmbedder(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}
	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	analyzer := trend.NewAnalyzer(cfg.Trend.StructuredDir, log)
	renderer := chart.NewRenderer(cfg.Chart.OutputPath)

	planner := agent.NewPlanner(provider, log)
	executor := agent.NewExecutor(agent.ExecutorConfig{
		Embedder:        embedder,
		Store:           store,
		Trend:           analyzer,
		Chart:           renderer,
		TopK:            cfg.VectorStore.TopK,
		EnableFinancial: cfg.Agent.EnableFinancial,
		EnablePlot:      cfg.Agent.EnablePlot,
	}, log)
	synthesizer := agent.NewSynthesizer(provider, log)
	pipeline := agent.NewPipeline(planner, executor, synthesizer, log)
	svc := service.NewAgentService(pipeline, cfg.Log.Metrics, log)

	return &runtime{
		cfg:      cfg,
		log:      log,
		embedder: embedder,
		store:    store,
		provider: provider,
		service:  svc,
	}, nil
}

func buildEmbedder(ctx context.Context, cfg *config.AppConfig) (domain.Embedder, error) {
	switch cfg.Embedder.Type {
	case "openai", "":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Dimension: cfg.Embedder.OpenAI.Dimension,
			BatchSize: cfg.Embedder.BatchSize,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
	case "genai":
		if cfg.Embedder.GenAI == nil {
			return nil, fmt.Errorf("genai embedder config missing")
		}
		return genai.NewClient(ctx, genai.Config{
			APIKeyEnv: cfg.Embedder.GenAI.APIKeyEnv,
			Model:     cfg.Embedder.GenAI.Model,
			Dimension: cfg.Embedder.GenAI.Dimension,
			TaskType:  cfg.Embedder.GenAI.TaskType,
		})
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func buildStore(cfg *config.AppConfig) (domain.VectorStore, error) {
	switch cfg.VectorStore.Type {
	case "qdrant", "":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKeyEnv:  cfg.VectorStore.Qdrant.APIKeyEnv,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "memory":
		return memory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}

func buildProvider(ctx context.Context, cfg *config.AppConfig) (llm.Provider, error) {
	switch cfg.LLM.Type {
	case "openai", "":
		if cfg.LLM.OpenAI == nil {
			return nil, fmt.Errorf("openai llm config missing")
		}
		return llmopenai.NewClient(llmopenai.Config{
			BaseURL:     cfg.LLM.OpenAI.BaseURL,
			APIKeyEnv:   cfg.LLM.OpenAI.APIKeyEnv,
			Model:       cfg.LLM.OpenAI.Model,
			Timeout:     time.Duration(cfg.LLM.OpenAI.TimeoutSecs) * time.Second,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
	case "genai":
		if cfg.LLM.GenAI == nil {
			return nil, fmt.Errorf("genai llm config missing")
		}
		return llmgenai.NewClient(ctx, llmgenai.Config{
			APIKeyEnv:   cfg.LLM.GenAI.APIKeyEnv,
			Model:       cfg.LLM.GenAI.Model,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
			MaxTokens:   cfg.LLM.MaxTokens,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Type)
	}
}

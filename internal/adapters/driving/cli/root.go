// Package cli implements the askdocs command-line interface.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/askdocs/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/askdocs/internal/adapters/driven/config/file"
	indexsqlite "github.com/custodia-labs/askdocs/internal/adapters/driven/index/sqlite"
	storagesqlite "github.com/custodia-labs/askdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/askdocs/internal/chunker"
	"github.com/custodia-labs/askdocs/internal/core/domain"
	"github.com/custodia-labs/askdocs/internal/core/ports/driving"
	"github.com/custodia-labs/askdocs/internal/core/services"
	"github.com/custodia-labs/askdocs/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Package-level services, wired in initServices before any command runs.
var (
	indexingService driving.IndexingService
	queryService    driving.QueryService
	app             *appResources
)

// Persistent flags.
var (
	verboseFlag bool
	ownerFlag   string
	configDir   string
)

// appResources holds everything that needs closing after a command.
type appResources struct {
	ai    *ai.InitResult
	index *indexsqlite.Index
	store *storagesqlite.Store
}

func (a *appResources) Close() {
	if a == nil {
		return
	}
	if a.index != nil {
		a.index.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.ai != nil {
		a.ai.Close()
	}
}

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "Ask questions about your documents",
	Long: `askdocs indexes plain-text documents and answers questions about
them using retrieval-augmented generation. Documents are chunked,
embedded and stored locally; queries retrieve the most relevant
passages and ground the answer in them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verboseFlag)

		// Help and version need no services.
		switch cmd.Name() {
		case "help", "version", "completion":
			return nil
		}
		return initServices(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		app.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&ownerFlag, "owner", "", "owner ID for tenancy (default $ASKDOCS_OWNER or \"default\")")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.askdocs)")
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}

// owner resolves the effective owner ID: flag, then environment, then
// a fixed default for single-user installs.
func owner() string {
	if ownerFlag != "" {
		return ownerFlag
	}
	if env := os.Getenv("ASKDOCS_OWNER"); env != "" {
		return env
	}
	return "default"
}

// initServices builds the full adapter and service graph from config.
func initServices(cmd *cobra.Command) error {
	cfg, err := configfile.Load(configDir)
	if err != nil {
		return err
	}

	res, warnings, err := ai.Init(
		ai.EmbeddingSettings{
			Provider:    cfg.Embedding.Provider,
			Model:       cfg.Embedding.Model,
			BaseURL:     cfg.Embedding.BaseURL,
			APIKey:      os.Getenv("ASKDOCS_OPENAI_API_KEY"),
			MinInterval: time.Duration(cfg.Embedding.MinIntervalMS) * time.Millisecond,
			DailyQuota:  cfg.Embedding.DailyQuota,
		},
		ai.LLMSettings{
			Provider: cfg.LLM.Provider,
			Model:    cfg.LLM.Model,
			BaseURL:  cfg.LLM.BaseURL,
			APIKey:   llmAPIKey(cfg.LLM.Provider),
		},
	)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		printWarning(cmd, w)
	}

	index, err := indexsqlite.New(indexsqlite.Config{
		DataDir:    cfg.DataDir,
		Similarity: domain.Similarity(cfg.Query.Similarity),
	})
	if err != nil {
		res.Close()
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	store, err := storagesqlite.NewStore(cfg.DataDir)
	if err != nil {
		index.Close()
		res.Close()
		return err
	}

	splitter, err := chunker.New(
		chunker.WithParentSize(cfg.Chunking.ParentSize),
		chunker.WithChildSize(cfg.Chunking.ChildSize),
		chunker.WithOverlap(cfg.Chunking.ChildOverlap),
	)
	if err != nil {
		store.Close()
		index.Close()
		res.Close()
		return err
	}

	app = &appResources{ai: res, index: index, store: store}

	indexingService = services.NewIndexingService(splitter, res.Embedder, index, store)
	queryService = services.NewQueryService(
		services.NewEnhancer(res.LLM, services.DefaultEnhanceTimeout),
		services.NewRetriever(res.Embedder, index),
		services.NewReranker(services.NewLLMScorer(res.LLM), services.DefaultRerankTimeout),
		services.NewGenerator(res.LLM, store, services.DefaultContextBudget, services.DefaultGenerateTimeout),
	)

	return nil
}

// llmAPIKey picks the API key environment variable for a provider.
func llmAPIKey(provider string) string {
	switch provider {
	case ai.ProviderAnthropic:
		return os.Getenv("ASKDOCS_ANTHROPIC_API_KEY")
	case ai.ProviderOpenAI:
		return os.Getenv("ASKDOCS_OPENAI_API_KEY")
	default:
		return ""
	}
}

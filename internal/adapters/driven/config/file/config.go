package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config is the full askdocs configuration as read from config.toml.
// API keys are never stored here; they come from the environment
// (ASKDOCS_OPENAI_API_KEY, ASKDOCS_ANTHROPIC_API_KEY).
type Config struct {
	DataDir   string          `toml:"data_dir"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Query     QueryConfig     `toml:"query"`
}

// EmbeddingConfig selects and tunes the embedding provider.
type EmbeddingConfig struct {
	Provider string `toml:"provider" validate:"required,oneof=ollama openai"`
	Model    string `toml:"model" validate:"required"`
	BaseURL  string `toml:"base_url" validate:"omitempty,url"`

	// MinIntervalMS is the minimum spacing between provider calls in
	// milliseconds. Zero disables pacing.
	MinIntervalMS int `toml:"min_interval_ms" validate:"min=0"`

	// DailyQuota caps embedded texts per UTC day. Zero means unlimited.
	DailyQuota int `toml:"daily_quota" validate:"min=0"`
}

// LLMConfig selects and tunes the generation provider.
type LLMConfig struct {
	Provider    string  `toml:"provider" validate:"required,oneof=ollama openai anthropic"`
	Model       string  `toml:"model" validate:"required"`
	BaseURL     string  `toml:"base_url" validate:"omitempty,url"`
	MaxTokens   int     `toml:"max_tokens" validate:"min=1"`
	Temperature float64 `toml:"temperature" validate:"min=0,max=2"`
}

// ChunkingConfig tunes document splitting.
type ChunkingConfig struct {
	ParentSize   int `toml:"parent_size" validate:"min=1"`
	ChildSize    int `toml:"child_size" validate:"min=1"`
	ChildOverlap int `toml:"child_overlap" validate:"min=0"`
}

// QueryConfig tunes the query pipeline.
type QueryConfig struct {
	TopK       int    `toml:"top_k" validate:"min=1,max=50"`
	Similarity string `toml:"similarity" validate:"oneof=cosine dot"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Provider:      "ollama",
			Model:         "nomic-embed-text",
			MinIntervalMS: int(4 * time.Second / time.Millisecond),
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Model:       "llama3.2",
			MaxTokens:   1024,
			Temperature: 0.2,
		},
		Chunking: ChunkingConfig{
			ParentSize:   1000,
			ChildSize:    300,
			ChildOverlap: 100,
		},
		Query: QueryConfig{
			TopK:       5,
			Similarity: "cosine",
		},
	}
}

// Path returns the config file location. If configDir is empty it
// defaults to ~/.askdocs.
func Path(configDir string) (string, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".askdocs")
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// Load reads and validates the configuration. A missing file yields the
// defaults; a present but invalid file is an error.
func Load(configDir string) (Config, error) {
	path, err := Path(configDir)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the configuration to disk, creating the directory if
// needed. The file is written with restricted permissions.
func Save(configDir string, cfg Config) error {
	path, err := Path(configDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks the configuration against its struct tags plus
// cross-field rules the tags cannot express.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return err
	}

	if cfg.Chunking.ChildSize > cfg.Chunking.ParentSize {
		return fmt.Errorf("chunking: child_size %d exceeds parent_size %d",
			cfg.Chunking.ChildSize, cfg.Chunking.ParentSize)
	}
	if cfg.Chunking.ChildOverlap >= cfg.Chunking.ChildSize {
		return fmt.Errorf("chunking: child_overlap %d must be smaller than child_size %d",
			cfg.Chunking.ChildOverlap, cfg.Chunking.ChildSize)
	}

	return nil
}

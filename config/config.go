// Package config loads NEURA configuration from neura.yaml, NEURA_*
// environment variables and built-in defaults, in that order of
// precedence (env over file over defaults).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full NEURA configuration.
type Config struct {
	LLM    LLMConfig    `mapstructure:"llm"`
	Memory MemoryConfig `mapstructure:"memory"`
	Tools  ToolsConfig  `mapstructure:"tools"`
	Server ServerConfig `mapstructure:"server"`
	Runner RunnerConfig `mapstructure:"runner"`

	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	DataDir  string `mapstructure:"data_dir" validate:"required"`

	// Environment names the deployment profile (development, production).
	// Operational only: it never changes behavior beyond logging.
	Environment string `mapstructure:"environment"`
}

// LLMConfig selects and tunes the completion provider.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider" validate:"oneof=openai anthropic"`
	Model       string  `mapstructure:"model" validate:"required"`
	Temperature float64 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxTokens   int     `mapstructure:"max_tokens" validate:"min=1,max=100000"`
}

// MemoryConfig selects the memory backend and embedder.
type MemoryConfig struct {
	Backend    string `mapstructure:"backend" validate:"oneof=chromem file milvus"`
	Collection string `mapstructure:"collection" validate:"required"`
	// Path overrides the store location; empty derives it from data_dir.
	Path     string `mapstructure:"path"`
	Embedder string `mapstructure:"embedder" validate:"oneof=openai onnx mock"`
	// EmbeddingModel is used by the openai embedder.
	EmbeddingModel string `mapstructure:"embedding_model"`
	// Milvus connection, used when backend is milvus.
	MilvusAddress string `mapstructure:"milvus_address"`
}

// ToolsConfig tunes the built-in tools.
type ToolsConfig struct {
	Search  SearchToolConfig  `mapstructure:"search"`
	Scraper ScraperToolConfig `mapstructure:"scraper"`
}

// SearchToolConfig tunes web_search.
type SearchToolConfig struct {
	MaxResults int    `mapstructure:"max_results" validate:"min=1,max=25"`
	UserAgent  string `mapstructure:"user_agent"`
}

// ScraperToolConfig tunes web_scraper.
type ScraperToolConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"min=1,max=300"`
	UserAgent      string `mapstructure:"user_agent"`
}

// ServerConfig tunes the serve command.
type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// RunnerConfig tunes task execution.
type RunnerConfig struct {
	MaxSteps   int  `mapstructure:"max_steps" validate:"min=1,max=50"`
	SaveMemory bool `mapstructure:"save_memory"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4-turbo-preview")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 2000)

	v.SetDefault("memory.backend", "chromem")
	v.SetDefault("memory.collection", "neura_memory")
	v.SetDefault("memory.embedder", "openai")
	v.SetDefault("memory.embedding_model", "text-embedding-3-small")
	v.SetDefault("memory.milvus_address", "localhost:19530")

	v.SetDefault("tools.search.max_results", 5)
	v.SetDefault("tools.scraper.timeout_seconds", 30)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("runner.max_steps", 5)
	v.SetDefault("runner.save_memory", true)

	v.SetDefault("log_level", "info")
	v.SetDefault("data_dir", "./data")
}

// Load reads configuration from the given file (optional), NEURA_*
// environment variables and defaults. An empty path searches for
// neura.yaml in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NEURA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("neura")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// A missing default config file is fine; defaults apply.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Environment == "" {
		cfg.Environment = os.Getenv("ENVIRONMENT")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

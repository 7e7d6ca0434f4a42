package env

import (
	"fmt"
	"os"
	"time"

	"github.com/neura-ai/neura/config"
	"github.com/neura-ai/neura/llm"
	"github.com/neura-ai/neura/llm/anthropic"
	"github.com/neura-ai/neura/llm/openai"
	"github.com/neura-ai/neura/tools"
)

// newProvider selects the completion backend from config. API keys
// come from the environment, never from the config file.
func newProvider(cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLM.Provider {
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return openai.New(openai.Config{APIKey: key})
	case "anthropic":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return anthropic.New(anthropic.Config{APIKey: key})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// newRegistry builds the default tool registry tuned by config.
func newRegistry(cfg *config.Config) *tools.Registry {
	r := tools.NewRegistry()
	r.Register(tools.NewWebSearch(&tools.SearchConfig{
		MaxResults: cfg.Tools.Search.MaxResults,
		UserAgent:  cfg.Tools.Search.UserAgent,
	}))
	r.Register(tools.NewWebScraper(&tools.ScraperConfig{
		Timeout:   time.Duration(cfg.Tools.Scraper.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Tools.Scraper.UserAgent,
	}))
	return r
}

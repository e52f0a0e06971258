package ai

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/zhouzirui/z-memory/backend/internal/config"
)

// NewGenerator picks the provider configured in cfg.
func NewGenerator(ctx context.Context, cfg config.AIConfig, logger *log.Logger) (StreamingGenerator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" || cfg.OpenAI.Model == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY and OPENAI_MODEL are required for the openai provider")
		}
		return NewOpenAIGenerator(logger, cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model, cfg.StreamResponse), nil
	case config.ProviderArk, "":
		svc, err := NewService(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

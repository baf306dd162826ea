// Package ai holds the remote text generators behind letters.Generator.
package ai

import (
	"context"
	"fmt"

	"hrdocs/internal/domain/letters"
	"hrdocs/internal/platform/config"
)

// New picks the generator named by AI_PROVIDER.
func New(ctx context.Context, cfg config.Config) (letters.Generator, error) {
	switch cfg.AIProvider {
	case config.AIProviderOllama:
		return NewOllamaClient(cfg.AIURL, cfg.AIModel), nil
	case config.AIProviderGemini:
		return NewGeminiClient(ctx, cfg.AIAPIKey, cfg.AIModel)
	case config.AIProviderNone, "":
		return letters.DisabledGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}

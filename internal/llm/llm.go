// Package llm holds the upstream document-understanding adapters. Every adapter
// implements statement.DocumentModel.
package llm

import (
	"context"
	"fmt"

	"github.com/dvloznov/statement-analyzer/internal/config"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/rs/zerolog"
)

// stageResponse marks malformed answers detected before the core parses them.
const stageResponse = "response"

// New returns the DocumentModel for cfg.Provider. A missing credential yields an
// Unconfigured model so the server can still start and report itself unhealthy.
func New(ctx context.Context, cfg config.AIConfig, log zerolog.Logger) (statement.DocumentModel, error) {
	if !cfg.APIKeyConfigured() {
		log.Warn().Str("provider", cfg.Provider).Str("setting", cfg.APIKeySetting()).Msg("AI API key not configured; analysis requests will fail")
		return &Unconfigured{Provider: cfg.Provider, Setting: cfg.APIKeySetting()}, nil
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropic(cfg, nil, log), nil
	case config.ProviderGemini:
		return NewGemini(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("llm.New: unknown provider %q", cfg.Provider)
	}
}

// Unconfigured fails every call with a ConfigurationError.
type Unconfigured struct {
	Provider string
	Setting  string
}

func (u *Unconfigured) Generate(context.Context, statement.Prompt) (string, error) {
	return "", &statement.ConfigurationError{
		Setting: u.Setting,
		Reason:  fmt.Sprintf("no API key configured for provider %s", u.Provider),
	}
}

package llm

import (
	"context"
	"testing"

	"github.com/dvloznov/statement-analyzer/internal/config"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingKeyIsUnconfigured(t *testing.T) {
	cfg := anthropicConfig("http://unused")
	cfg.AnthropicAPIKey = ""

	model, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &Unconfigured{}, model)

	_, err = model.Generate(context.Background(), testPrompt(t))
	var cfgErr *statement.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "CLAUDE_API_KEY", cfgErr.Setting)
}

func TestNew_SelectsProvider(t *testing.T) {
	model, err := New(context.Background(), anthropicConfig("http://unused"), zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Anthropic{}, model)

	model, err = New(context.Background(), geminiConfig("http://unused"), zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &Gemini{}, model)

	bad := anthropicConfig("http://unused")
	bad.Provider = "openai"
	_, err = New(context.Background(), bad, zerolog.Nop())
	assert.Error(t, err)
}

func TestUnconfigured_AnalyzerReportsConfigurationError(t *testing.T) {
	doc, err := statement.NewDocument([]byte("%PDF"), "")
	require.NoError(t, err)

	analyzer := statement.NewModelAnalyzer(&Unconfigured{Provider: config.ProviderGemini, Setting: "GEMINI_API_KEY"}, zerolog.Nop())
	_, err = analyzer.Analyze(context.Background(), doc)

	var cfgErr *statement.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "GEMINI_API_KEY", cfgErr.Setting)
}

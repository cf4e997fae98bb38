package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/statement-analyzer/internal/config"
	"github.com/dvloznov/statement-analyzer/internal/logger"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const providerGemini = "gemini"

// Gemini sends the statement as an inline blob to the Gemini API.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int32
	timeout   time.Duration
	log       zerolog.Logger
}

// NewGemini creates the GenAI client for the Gemini API backend.
func NewGemini(ctx context.Context, cfg config.AIConfig, log zerolog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: "v1",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}
	return &Gemini{
		client:    client,
		model:     cfg.Model,
		maxTokens: int32(cfg.MaxTokens),
		timeout:   cfg.Timeout,
		log:       log,
	}, nil
}

// Generate returns the text of the first candidate.
func (g *Gemini) Generate(ctx context.Context, prompt statement.Prompt) (string, error) {
	log := logger.FromContextOr(ctx, g.log)

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: prompt.Document.MediaType(),
						Data:     prompt.Document.Bytes(),
					},
				},
				{Text: prompt.Instruction},
			},
		},
	}
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: g.maxTokens,
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, genCfg)
	if err != nil {
		log.Error().Err(err).Str("provider", providerGemini).Msg("AI API call failed")
		return "", toUpstreamError(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", statement.NewMalformedResponse(stageResponse, "", errors.New("empty response from model"))
	}

	event := log.Debug().
		Str("provider", providerGemini).
		Str("model", g.model).
		Dur("duration", time.Since(start))
	if resp.UsageMetadata != nil {
		event = event.
			Int32("input_tokens", resp.UsageMetadata.PromptTokenCount).
			Int32("output_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	event.Msg("AI API call completed")

	return text, nil
}

func toUpstreamError(err error) *statement.UpstreamError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &statement.UpstreamError{Provider: providerGemini, StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return &statement.UpstreamError{Provider: providerGemini, StatusCode: apiErrPtr.Code, Body: apiErrPtr.Message}
	}
	return &statement.UpstreamError{Provider: providerGemini, Err: err}
}

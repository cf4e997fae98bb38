package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/dvloznov/statement-analyzer/internal/config"
	"github.com/dvloznov/statement-analyzer/internal/logger"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/rs/zerolog"
)

const providerAnthropic = "anthropic"

// Anthropic calls the Messages API with the statement attached as a content block.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	log       zerolog.Logger
}

// NewAnthropic builds the adapter. A nil httpClient means http.DefaultClient.
// Retries are disabled; a failed call is reported to the caller at once.
func NewAnthropic(cfg config.AIConfig, httpClient *http.Client, log zerolog.Logger) *Anthropic {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicAPIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.AnthropicBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.AnthropicBaseURL))
	}
	if cfg.AnthropicVersion != "" {
		opts = append(opts, option.WithHeader("anthropic-version", cfg.AnthropicVersion))
	}
	return &Anthropic{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
		timeout:   cfg.Timeout,
		log:       log,
	}
}

// Generate sends one user message and returns the concatenated text blocks.
func (a *Anthropic) Generate(ctx context.Context, prompt statement.Prompt) (string, error) {
	log := logger.FromContextOr(ctx, a.log)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	msg, err := a.client.Messages.New(ctx, a.buildParams(prompt))
	if err != nil {
		log.Error().Err(err).Str("provider", providerAnthropic).Msg("AI API call failed")
		return "", toAnthropicUpstreamError(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", statement.NewMalformedResponse(stageResponse, msg.RawJSON(), errors.New("no text content in response"))
	}

	log.Debug().
		Str("provider", providerAnthropic).
		Str("model", a.model).
		Int64("input_tokens", msg.Usage.InputTokens).
		Int64("output_tokens", msg.Usage.OutputTokens).
		Str("stop_reason", string(msg.StopReason)).
		Dur("duration", time.Since(start)).
		Msg("AI API call completed")

	return text.String(), nil
}

func (a *Anthropic) buildParams(prompt statement.Prompt) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(0),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				documentBlock(prompt.Document),
				anthropic.NewTextBlock(prompt.Instruction),
			),
		},
	}
}

// documentBlock attaches images as image blocks and everything else as a PDF document.
func documentBlock(doc statement.Document) anthropic.ContentBlockParamUnion {
	if strings.HasPrefix(doc.MediaType(), "image/") {
		return anthropic.NewImageBlockBase64(doc.MediaType(), doc.Base64())
	}
	return anthropic.NewDocumentBlock(anthropic.Base64PDFSourceParam{Data: doc.Base64()})
}

func toAnthropicUpstreamError(err error) *statement.UpstreamError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &statement.UpstreamError{Provider: providerAnthropic, StatusCode: apiErr.StatusCode, Body: apiErr.RawJSON()}
	}
	return &statement.UpstreamError{Provider: providerAnthropic, Err: err}
}

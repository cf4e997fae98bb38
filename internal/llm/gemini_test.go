package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/statement-analyzer/internal/config"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		Provider:      config.ProviderGemini,
		GeminiAPIKey:  "g-test",
		GeminiBaseURL: baseURL,
		Model:         config.DefaultGeminiModel,
		MaxTokens:     2048,
		Timeout:       5 * time.Second,
	}
}

func TestGemini_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/"+config.DefaultGeminiModel+":generateContent"), r.URL.Path)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"ok\":true}"}]}}],"usageMetadata":{"promptTokenCount":12,"candidatesTokenCount":3}}`))
	}))
	defer srv.Close()

	model, err := NewGemini(context.Background(), geminiConfig(srv.URL), zerolog.Nop())
	require.NoError(t, err)

	text, err := model.Generate(context.Background(), testPrompt(t))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, text)

	encoded, err := json.Marshal(body)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), "Analiza este estado de cuenta")
	assert.Contains(t, string(encoded), "application/pdf")
	assert.Contains(t, string(encoded), "2048")
}

func TestGemini_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	model, err := NewGemini(context.Background(), geminiConfig(srv.URL), zerolog.Nop())
	require.NoError(t, err)

	_, err = model.Generate(context.Background(), testPrompt(t))

	var upstream *statement.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Equal(t, "bad", upstream.Body)
}

func TestGemini_EmptyAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	model, err := NewGemini(context.Background(), geminiConfig(srv.URL), zerolog.Nop())
	require.NoError(t, err)

	_, err = model.Generate(context.Background(), testPrompt(t))
	var malformed *statement.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_Health(t *testing.T) {
	h := NewSystemHandler(ServiceInfo{Environment: "production", Port: 3000, Provider: "anthropic", APIKeyConfigured: false})
	h.now = func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) }

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "OK",
		"timestamp": "2024-01-15T10:00:00Z",
		"environment": "production",
		"port": 3000,
		"provider": "anthropic",
		"apiKeyConfigured": false
	}`, rec.Body.String())
}

func TestSystemHandler_NotFound(t *testing.T) {
	h := NewSystemHandler(ServiceInfo{Endpoints: []string{"GET /", "GET /health"}})

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ruta no encontrada", body["error"])
	assert.Equal(t, []any{"GET /", "GET /health"}, body["availableEndpoints"])
}

func TestSystemHandler_Root(t *testing.T) {
	h := NewSystemHandler(ServiceInfo{Name: "statement-analyzer", APIKeyConfigured: true, Endpoints: []string{"GET /"}})

	rec := httptest.NewRecorder()
	h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["apiKeyConfigured"])
	assert.Equal(t, "statement-analyzer", body["name"])
}

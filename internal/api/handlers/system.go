package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/statement-analyzer/internal/api/middleware"
)

// ServiceInfo is the static description reported by the system endpoints.
type ServiceInfo struct {
	Name             string
	Environment      string
	Port             int
	Provider         string
	Model            string
	APIKeyConfigured bool
	Endpoints        []string
}

// SystemHandler serves the banner, health and discovery endpoints.
type SystemHandler struct {
	info ServiceInfo
	now  func() time.Time
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(info ServiceInfo) *SystemHandler {
	return &SystemHandler{info: info, now: time.Now}
}

// Root handles GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"name":             h.info.Name,
		"message":          "Servidor funcionando correctamente",
		"environment":      h.info.Environment,
		"provider":         h.info.Provider,
		"model":            h.info.Model,
		"apiKeyConfigured": h.info.APIKeyConfigured,
		"endpoints":        h.info.Endpoints,
	})
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "OK",
		"timestamp":        h.now().UTC().Format(time.RFC3339),
		"environment":      h.info.Environment,
		"port":             h.info.Port,
		"provider":         h.info.Provider,
		"apiKeyConfigured": h.info.APIKeyConfigured,
	})
}

// Test handles GET /test
func (h *SystemHandler) Test(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Servidor funcionando correctamente",
		"endpoints": h.info.Endpoints,
	})
}

// NotFound handles unknown routes.
func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":              "Ruta no encontrada",
		"availableEndpoints": h.info.Endpoints,
	})
}

// MethodNotAllowed handles known routes called with the wrong method.
func (h *SystemHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, http.StatusMethodNotAllowed, "Método no permitido", r.Method+" "+r.URL.Path)
}

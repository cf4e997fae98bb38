// Package api wires the HTTP routes of the statement analyzer.
package api

import (
	"net/http"

	"github.com/dvloznov/statement-analyzer/internal/api/handlers"
	"github.com/dvloznov/statement-analyzer/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Route paths.
const (
	PathRoot          = "/"
	PathHealth        = "/health"
	PathTest          = "/test"
	PathAnalyzeBase64 = "/api/analyze-base64"
	PathAnalyzePDF    = "/api/analyze-pdf"
	PathAnalyzeGCS    = "/api/analyze-gcs"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Analysis     *handlers.AnalysisHandler
	Info         handlers.ServiceInfo
	GCSEnabled   bool
	AllowOrigins []string
	Log          zerolog.Logger
}

// Endpoints lists the public routes, as advertised by /, /test and 404 responses.
func Endpoints(gcsEnabled bool) []string {
	endpoints := []string{
		"GET " + PathRoot,
		"POST " + PathAnalyzeBase64,
		"POST " + PathAnalyzePDF,
	}
	if gcsEnabled {
		endpoints = append(endpoints, "POST "+PathAnalyzeGCS)
	}
	return append(endpoints, "GET "+PathHealth, "GET "+PathTest)
}

// NewRouter builds the chi router with the middleware chain applied.
func NewRouter(deps Deps) http.Handler {
	info := deps.Info
	if info.Endpoints == nil {
		info.Endpoints = Endpoints(deps.GCSEnabled)
	}
	system := handlers.NewSystemHandler(info)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.Logger(deps.Log))
	r.Use(middleware.CORS(deps.AllowOrigins))

	r.NotFound(system.NotFound)
	r.MethodNotAllowed(system.MethodNotAllowed)

	r.Get(PathRoot, system.Root)
	r.Get(PathHealth, system.Health)
	r.Get(PathTest, system.Test)

	r.Post(PathAnalyzeBase64, deps.Analysis.AnalyzeBase64)
	r.Post(PathAnalyzePDF, deps.Analysis.AnalyzePDF)
	if deps.GCSEnabled {
		r.Post(PathAnalyzeGCS, deps.Analysis.AnalyzeGCS)
	}

	return r
}

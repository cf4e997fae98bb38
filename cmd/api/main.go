package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dvloznov/statement-analyzer/internal/api"
	"github.com/dvloznov/statement-analyzer/internal/api/handlers"
	"github.com/dvloznov/statement-analyzer/internal/api/middleware"
	"github.com/dvloznov/statement-analyzer/internal/config"
	"github.com/dvloznov/statement-analyzer/internal/gcs"
	"github.com/dvloznov/statement-analyzer/internal/llm"
	"github.com/dvloznov/statement-analyzer/internal/logger"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/spf13/cobra"
)

const serviceName = "statement-analyzer"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:          "api",
		Short:        "Start the bank statement analysis API server",
		SilenceUsage: true,
		RunE:         runServer,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Optional config file (yaml, json or toml)")
	rootCmd.Flags().Int("port", 0, "HTTP server port (overrides PORT)")
	rootCmd.Flags().String("ai-provider", "", "AI provider: anthropic or gemini (overrides AI_PROVIDER)")
	rootCmd.Flags().String("ai-model", "", "Model id (overrides AI_MODEL)")
	rootCmd.Flags().String("log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.Flags().Bool("gcs-enabled", false, "Expose POST /api/analyze-gcs (overrides GCS_ENABLED)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Pretty: !cfg.IsProduction()})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		log.Warn().Err(err).Msg("Starting without AI credentials; analysis requests will fail")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Server.UploadDir, 0o750); err != nil {
		return fmt.Errorf("create upload dir %s: %w", cfg.Server.UploadDir, err)
	}

	model, err := llm.New(ctx, cfg.AI, log)
	if err != nil {
		return fmt.Errorf("create AI model: %w", err)
	}
	analyzer := statement.NewModelAnalyzer(model, log)

	var source gcs.DocumentSource
	if cfg.GCS.Enabled {
		gcsSource, err := gcs.NewSource(ctx, cfg.Server.MaxUploadBytes)
		if err != nil {
			return fmt.Errorf("create GCS source: %w", err)
		}
		defer gcsSource.Close()
		source = gcsSource
	}

	router := api.NewRouter(api.Deps{
		Analysis: handlers.NewAnalysisHandler(analyzer, source, cfg.Server.UploadDir, cfg.Server.MaxUploadBytes, log),
		Info: handlers.ServiceInfo{
			Name:             serviceName,
			Environment:      cfg.Env,
			Port:             cfg.Server.Port,
			Provider:         cfg.AI.Provider,
			Model:            cfg.AI.Model,
			APIKeyConfigured: cfg.AI.APIKeyConfigured(),
		},
		GCSEnabled:   cfg.GCS.Enabled,
		AllowOrigins: middleware.AllowedOrigins(cfg.Server.FrontendURL),
		Log:          log,
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info().
			Int("port", cfg.Server.Port).
			Str("environment", cfg.Env).
			Str("provider", cfg.AI.Provider).
			Str("model", cfg.AI.Model).
			Bool("api_key_configured", cfg.AI.APIKeyConfigured()).
			Bool("gcs_enabled", cfg.GCS.Enabled).
			Msg("Starting API server")
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return server.Close()
	}

	log.Info().Msg("Server exited")
	return nil
}

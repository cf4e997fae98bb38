package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dvloznov/statement-analyzer/internal/config"
	"github.com/dvloznov/statement-analyzer/internal/gcs"
	"github.com/dvloznov/statement-analyzer/internal/llm"
	"github.com/dvloznov/statement-analyzer/internal/logger"
	"github.com/dvloznov/statement-analyzer/internal/statement"
	"github.com/spf13/cobra"
)

var (
	configFile string
	mediaType  string
	printOnly  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "analyze <file.pdf | gs://bucket/object>",
		Short:        "Analyze one bank statement and print the result as JSON",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Optional config file (yaml, json or toml)")
	rootCmd.Flags().StringVar(&mediaType, "media-type", "", "Media type of a local file (default application/pdf)")
	rootCmd.Flags().BoolVar(&printOnly, "print-prompts", false, "Print the detection and extraction instructions and exit")
	rootCmd.Flags().String("ai-provider", "", "AI provider: anthropic or gemini (overrides AI_PROVIDER)")
	rootCmd.Flags().String("ai-model", "", "Model id (overrides AI_MODEL)")
	rootCmd.Flags().Int("ai-max-tokens", 0, "Max output tokens (overrides AI_MAX_TOKENS)")
	rootCmd.Flags().String("ai-timeout", "", "Per-call timeout, e.g. 90s (overrides AI_TIMEOUT)")
	rootCmd.Flags().String("log-level", "", "Log level (overrides LOG_LEVEL)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if printOnly {
		return printPrompts()
	}

	cfg, err := config.Load(config.Options{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only the JSON result.
	log, err := logger.NewWithOptions(logger.Options{Level: cfg.Log.Level, Pretty: true, Output: os.Stderr})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	doc, err := loadDocument(ctx, args[0], cfg.Server.MaxUploadBytes)
	if err != nil {
		return err
	}

	model, err := llm.New(ctx, cfg.AI, log)
	if err != nil {
		return fmt.Errorf("create AI model: %w", err)
	}

	result, err := statement.NewModelAnalyzer(model, log).Analyze(ctx, doc)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func loadDocument(ctx context.Context, target string, maxBytes int64) (statement.Document, error) {
	if strings.HasPrefix(target, "gs://") {
		source, err := gcs.NewSource(ctx, maxBytes)
		if err != nil {
			return statement.Document{}, err
		}
		defer source.Close()
		return source.FetchDocument(ctx, target)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return statement.Document{}, fmt.Errorf("failed to read statement at %q: %w", target, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return statement.Document{}, fmt.Errorf("%s is %d bytes, limit is %d", target, len(data), maxBytes)
	}
	return statement.NewDocument(data, mediaType)
}

func printPrompts() error {
	fmt.Println("=== detection ===")
	fmt.Println(statement.DetectionInstruction())
	for _, category := range statement.AccountCategories {
		instruction, err := statement.ExtractionInstruction(statement.AccountTypeVerdict{AccountCategory: category})
		if err != nil {
			return err
		}
		fmt.Printf("=== extraction: %s ===\n%s\n", category, instruction)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	DefaultAnthropicModel = "claude-3-sonnet-20240229"
	DefaultGeminiModel    = "gemini-2.5-flash"

	EnvProduction = "production"
)

// Config is the full service configuration. It is built once at startup and
// passed by value into constructors.
type Config struct {
	Env    string
	Server ServerConfig
	AI     AIConfig
	GCS    GCSConfig
	Log    LogConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	UploadDir       string
	MaxUploadBytes  int64
	FrontendURL     string
}

// AIConfig selects and configures the upstream document model.
type AIConfig struct {
	Provider         string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	AnthropicVersion string
	GeminiAPIKey     string
	GeminiBaseURL    string
	Model            string
	MaxTokens        int
	Timeout          time.Duration
}

type GCSConfig struct {
	Enabled bool
}

type LogConfig struct {
	Level string
}

// APIKeySetting names the variable holding the selected provider's credential.
func (c AIConfig) APIKeySetting() string {
	if c.Provider == ProviderGemini {
		return "GEMINI_API_KEY"
	}
	return "CLAUDE_API_KEY"
}

// APIKey returns the credential of the selected provider.
func (c AIConfig) APIKey() string {
	if c.Provider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.AnthropicAPIKey
}

// APIKeyConfigured reports whether the selected provider has a credential.
func (c AIConfig) APIKeyConfigured() bool {
	return strings.TrimSpace(c.APIKey()) != ""
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// ErrMissingAPIKey is reported by RequireAPIKey when the selected provider has no credential.
var ErrMissingAPIKey = errors.New("no API key configured for the selected AI provider")

// RequireAPIKey fails when the selected provider has no credential. The server
// starts anyway and reports itself unconfigured; one-shot tools treat it as fatal.
func (c Config) RequireAPIKey() error {
	if !c.AI.APIKeyConfigured() {
		return fmt.Errorf("%s: %w", c.AI.APIKeySetting(), ErrMissingAPIKey)
	}
	return nil
}

// Validate checks every setting except the credential.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Server.Port))
	}
	switch c.AI.Provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("AI_PROVIDER %q is not one of %s, %s", c.AI.Provider, ProviderAnthropic, ProviderGemini))
	}
	if c.AI.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", c.AI.MaxTokens))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("AI_TIMEOUT must be positive, got %s", c.AI.Timeout))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.Server.MaxUploadBytes))
	}
	return errors.Join(errs...)
}

// Options tune Load.
type Options struct {
	// EnvFiles are tried in order; the first that exists is loaded. Variables
	// already set in the environment win.
	EnvFiles []string
	// ConfigFile is an optional YAML/JSON/TOML file read below the environment.
	ConfigFile string
	// Flags override every other source when set on the command line. Flag
	// names map to keys by upper-casing and replacing '-' with '_'.
	Flags *pflag.FlagSet
}

// DefaultEnvFiles are the .env locations tried when Options.EnvFiles is nil.
var DefaultEnvFiles = []string{".env", "../.env"}

// Load reads defaults, the optional .env and config files, and the environment.
func Load(opts Options) (Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = DefaultEnvFiles
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err == nil {
			break
		}
	}

	v := newViper()
	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if _, known := knownKeys[key]; !known {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = fmt.Errorf("Load: bind flag %s: %w", f.Name, err)
			}
		})
		if bindErr != nil {
			return Config{}, bindErr
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("Load: read config file %s: %w", opts.ConfigFile, err)
		}
	}

	return fromViper(v)
}

// envAliases lists alternative variable names per key, first match wins.
var envAliases = map[string][]string{
	"CLAUDE_API_KEY": {"CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	"GEMINI_API_KEY": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// knownKeys is filled from the defaults table.
var knownKeys = map[string]struct{}{}

var defaults = map[string]any{
	"APP_ENV":                 "development",
	"PORT":                    3000,
	"LOG_LEVEL":               "info",
	"AI_PROVIDER":             ProviderAnthropic,
	"CLAUDE_API_KEY":          "",
	"GEMINI_API_KEY":          "",
	"GEMINI_BASE_URL":         "",
	"ANTHROPIC_BASE_URL":      "https://api.anthropic.com",
	"ANTHROPIC_VERSION":       "2023-06-01",
	"AI_MODEL":                "",
	"AI_MAX_TOKENS":           4000,
	"AI_TIMEOUT":              "60s",
	"UPLOAD_DIR":              "uploads",
	"MAX_UPLOAD_BYTES":        10 << 20,
	"FRONTEND_URL":            "",
	"GCS_ENABLED":             false,
	"SERVER_READ_TIMEOUT":     "30s",
	"SERVER_WRITE_TIMEOUT":    "150s",
	"SERVER_SHUTDOWN_TIMEOUT": "30s",
}

func init() {
	for k := range defaults {
		knownKeys[k] = struct{}{}
	}
}

func setDefaults(v *viper.Viper) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// fromViper builds a Config from a populated viper instance.
func fromViper(v *viper.Viper) (Config, error) {
	var errs []error
	duration := func(key string) time.Duration {
		d, err := parseDuration(v.GetString(key))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}

	cfg := Config{
		Env: strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV"))),
		Server: ServerConfig{
			Port:            v.GetInt("PORT"),
			ReadTimeout:     duration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    duration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: duration("SERVER_SHUTDOWN_TIMEOUT"),
			UploadDir:       v.GetString("UPLOAD_DIR"),
			MaxUploadBytes:  v.GetInt64("MAX_UPLOAD_BYTES"),
			FrontendURL:     strings.TrimSpace(v.GetString("FRONTEND_URL")),
		},
		AI: AIConfig{
			Provider:         strings.ToLower(strings.TrimSpace(v.GetString("AI_PROVIDER"))),
			AnthropicAPIKey:  strings.TrimSpace(v.GetString("CLAUDE_API_KEY")),
			AnthropicBaseURL: strings.TrimRight(v.GetString("ANTHROPIC_BASE_URL"), "/"),
			AnthropicVersion: v.GetString("ANTHROPIC_VERSION"),
			GeminiAPIKey:     strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
			GeminiBaseURL:    strings.TrimSpace(v.GetString("GEMINI_BASE_URL")),
			Model:            strings.TrimSpace(v.GetString("AI_MODEL")),
			MaxTokens:        v.GetInt("AI_MAX_TOKENS"),
			Timeout:          duration("AI_TIMEOUT"),
		},
		GCS: GCSConfig{Enabled: v.GetBool("GCS_ENABLED")},
		Log: LogConfig{Level: v.GetString("LOG_LEVEL")},
	}

	if cfg.AI.Model == "" {
		cfg.AI.Model = DefaultModel(cfg.AI.Provider)
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("fromViper: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// newViper returns a viper instance with defaults, environment and aliases bound.
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		_ = v.BindEnv(append([]string{key}, aliases...)...)
	}
	return v
}

// DefaultModel returns the model id used when AI_MODEL is empty.
func DefaultModel(provider string) string {
	if provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultAnthropicModel
}

// parseDuration accepts Go duration strings and bare integers as seconds.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

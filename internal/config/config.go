package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	AI          AIConfig          `toml:"ai"`
	Server      ServerConfig      `toml:"server"`
	Wikipedia   WikipediaConfig   `toml:"wikipedia"`
	Reliability ReliabilityConfig `toml:"reliability"`
}

// AIConfig holds generative model settings.
type AIConfig struct {
	Provider        string  `toml:"provider"`
	APIKey          string  `toml:"api_key"`
	Model           string  `toml:"model"`
	Temperature     float64 `toml:"temperature"`
	MaxOutputTokens int     `toml:"max_output_tokens"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int `toml:"port"`
	RateLimitRequests int `toml:"rate_limit_requests"`
	RateLimitWindowS  int `toml:"rate_limit_window_seconds"`
}

// WikipediaConfig holds article fetching and extraction settings.
type WikipediaConfig struct {
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	UserAgent       string `toml:"user_agent"`
	MinContentChars int    `toml:"min_content_chars"`
	MaxContentChars int    `toml:"max_content_chars"`
	MaxLinksScanned int    `toml:"max_links_scanned"`
	MaxEntities     int    `toml:"max_entities_per_category"`
}

// ReliabilityConfig holds per-dependency retry and circuit breaker settings.
type ReliabilityConfig struct {
	FetchMaxAttempts      int `toml:"fetch_max_attempts"`
	FetchMinDelayS        int `toml:"fetch_min_delay_seconds"`
	FetchMaxDelayS        int `toml:"fetch_max_delay_seconds"`
	FetchFailureThreshold int `toml:"fetch_failure_threshold"`
	FetchCooldownS        int `toml:"fetch_cooldown_seconds"`
	GenMaxAttempts        int `toml:"generation_max_attempts"`
	GenMinDelayS          int `toml:"generation_min_delay_seconds"`
	GenMaxDelayS          int `toml:"generation_max_delay_seconds"`
	GenFailureThreshold   int `toml:"generation_failure_threshold"`
	GenCooldownS          int `toml:"generation_cooldown_seconds"`
}

// Timeout returns the article fetch timeout as a duration.
func (w WikipediaConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSeconds) * time.Second
}

const defaultConfigContent = `[ai]
provider = "gemini"               # "gemini" or "openai"
api_key = ""                      # Your API key (or set AI_API_KEY env var)
model = "gemini-1.5-flash"
temperature = 0.7
max_output_tokens = 4096

[server]
port = 8000
rate_limit_requests = 100
rate_limit_window_seconds = 3600

[wikipedia]
timeout_seconds = 15
min_content_chars = 100
max_content_chars = 5000
max_links_scanned = 50
max_entities_per_category = 10

[reliability]
fetch_max_attempts = 3
fetch_min_delay_seconds = 2
fetch_max_delay_seconds = 10
fetch_failure_threshold = 5
fetch_cooldown_seconds = 60
generation_max_attempts = 2
generation_min_delay_seconds = 4
generation_max_delay_seconds = 20
generation_failure_threshold = 3
generation_cooldown_seconds = 120
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Validate explicitly-set values before applying defaults, so that
	// explicitly writing "port = 0" is an error rather than silently
	// being replaced with the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
// This catches cases like "port = 0" which would otherwise be silently
// replaced by the default value.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}
	if md.IsDefined("wikipedia", "timeout_seconds") {
		if cfg.Wikipedia.TimeoutSeconds < 1 {
			return fmt.Errorf("invalid wikipedia.timeout_seconds %d: must be >= 1", cfg.Wikipedia.TimeoutSeconds)
		}
	}
	if md.IsDefined("ai", "temperature") {
		if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
			return fmt.Errorf("invalid ai.temperature %v: must be between 0 and 2", cfg.AI.Temperature)
		}
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-1.5-flash"
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.MaxOutputTokens == 0 {
		cfg.AI.MaxOutputTokens = 4096
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitRequests == 0 {
		cfg.Server.RateLimitRequests = 100
	}
	if cfg.Server.RateLimitWindowS == 0 {
		cfg.Server.RateLimitWindowS = 3600
	}
	if cfg.Wikipedia.TimeoutSeconds == 0 {
		cfg.Wikipedia.TimeoutSeconds = 15
	}
	if cfg.Wikipedia.UserAgent == "" {
		cfg.Wikipedia.UserAgent = "WikiQuizBot/2.0 (Educational Purpose)"
	}
	if cfg.Wikipedia.MinContentChars == 0 {
		cfg.Wikipedia.MinContentChars = 100
	}
	if cfg.Wikipedia.MaxContentChars == 0 {
		cfg.Wikipedia.MaxContentChars = 5000
	}
	if cfg.Wikipedia.MaxLinksScanned == 0 {
		cfg.Wikipedia.MaxLinksScanned = 50
	}
	if cfg.Wikipedia.MaxEntities == 0 {
		cfg.Wikipedia.MaxEntities = 10
	}

	r := &cfg.Reliability
	if r.FetchMaxAttempts == 0 {
		r.FetchMaxAttempts = 3
	}
	if r.FetchMinDelayS == 0 {
		r.FetchMinDelayS = 2
	}
	if r.FetchMaxDelayS == 0 {
		r.FetchMaxDelayS = 10
	}
	if r.FetchFailureThreshold == 0 {
		r.FetchFailureThreshold = 5
	}
	if r.FetchCooldownS == 0 {
		r.FetchCooldownS = 60
	}
	if r.GenMaxAttempts == 0 {
		r.GenMaxAttempts = 2
	}
	if r.GenMinDelayS == 0 {
		r.GenMinDelayS = 4
	}
	if r.GenMaxDelayS == 0 {
		r.GenMaxDelayS = 20
	}
	if r.GenFailureThreshold == 0 {
		r.GenFailureThreshold = 3
	}
	if r.GenCooldownS == 0 {
		r.GenCooldownS = 120
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. GOOGLE_API_KEY (when provider is "gemini")
//  3. OPENAI_API_KEY (when provider is "openai")
func applyEnvOverrides(cfg *Config) {
	switch cfg.AI.Provider {
	case "gemini":
		if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	case "openai":
		if v := os.Getenv("OPENAI_API_KEY"); v != "" {
			cfg.AI.APIKey = v
		}
	}

	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "gemini", "openai":
		// valid
	default:
		return fmt.Errorf("invalid ai.provider %q: must be \"gemini\" or \"openai\"", cfg.AI.Provider)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	if cfg.Wikipedia.MinContentChars < 1 {
		return fmt.Errorf("invalid wikipedia.min_content_chars %d: must be >= 1", cfg.Wikipedia.MinContentChars)
	}

	if cfg.Reliability.FetchMinDelayS > cfg.Reliability.FetchMaxDelayS {
		return fmt.Errorf("invalid reliability backoff: fetch_min_delay_seconds %d exceeds fetch_max_delay_seconds %d",
			cfg.Reliability.FetchMinDelayS, cfg.Reliability.FetchMaxDelayS)
	}

	if cfg.Reliability.GenMinDelayS > cfg.Reliability.GenMaxDelayS {
		return fmt.Errorf("invalid reliability backoff: generation_min_delay_seconds %d exceeds generation_max_delay_seconds %d",
			cfg.Reliability.GenMinDelayS, cfg.Reliability.GenMaxDelayS)
	}

	if cfg.AI.APIKey == "" {
		slog.Warn("ai.api_key is empty: set it in the config file or via AI_API_KEY environment variable")
	}

	return nil
}

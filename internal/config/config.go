package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file consulted when PUSHGATE_CONFIG is unset.
const DefaultPath = "pushgate.yaml"

// Config holds the gate configuration. It is loaded once at process start.
type Config struct {
	Scope    ScopeConfig    `yaml:"scope"`
	Style    StyleConfig    `yaml:"style"`
	Git      GitConfig      `yaml:"git"`
	Workers  int            `yaml:"workers"`
	Log      LogConfig      `yaml:"log"`
	Advisory AdvisoryConfig `yaml:"advisory"`
	Audit    AuditConfig    `yaml:"audit"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// ScopeConfig decides which changed paths are validated.
type ScopeConfig struct {
	ExemptPrefixes []string `yaml:"exempt_prefixes"`
	Extensions     []string `yaml:"extensions"`
}

// StyleConfig configures the style rule engine.
type StyleConfig struct {
	IgnoreRules   []string `yaml:"ignore_rules"`
	MaxLineLength int      `yaml:"max_line_length"`
}

// GitConfig configures the revision-control service.
type GitConfig struct {
	Dir     string        `yaml:"dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
}

// AdvisoryConfig enables the LLM-backed validator.
type AdvisoryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	APIKey       string `yaml:"-"`
	Model        string `yaml:"model"`
	SystemPrompt string `yaml:"system_prompt"`
}

// AuditConfig enables the Postgres outcome ledger.
type AuditConfig struct {
	DatabaseURL string        `yaml:"database_url"`
	PingTimeout time.Duration `yaml:"ping_timeout"`
}

// ArchiveConfig enables report archival to an S3-compatible store.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Scope: ScopeConfig{
			Extensions: []string{".go"},
		},
		Style: StyleConfig{
			MaxLineLength: 120,
		},
		Git: GitConfig{
			Timeout: 30 * time.Second,
		},
		Workers: 1,
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Advisory: AdvisoryConfig{
			Model:        "gemini-2.5-flash",
			SystemPrompt: "You are a strict code reviewer. Report only definite defects.",
		},
		Audit: AuditConfig{
			PingTimeout: 2 * time.Second,
		},
		Archive: ArchiveConfig{
			Region: "us-east-1",
		},
	}
}

// Load reads the YAML file named by PUSHGATE_CONFIG (or DefaultPath), then
// applies environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	// Try to load .env file (ignore errors - it's optional)
	_ = godotenv.Load(".env")

	path := getEnv("PUSHGATE_CONFIG", DefaultPath)
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML config on top of Default. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Scope.ExemptPrefixes = getEnvAsSlice("PUSHGATE_EXEMPT_PREFIXES", c.Scope.ExemptPrefixes)
	c.Scope.Extensions = getEnvAsSlice("PUSHGATE_EXTENSIONS", c.Scope.Extensions)
	c.Style.IgnoreRules = getEnvAsSlice("PUSHGATE_IGNORE_RULES", c.Style.IgnoreRules)
	c.Git.Dir = getEnv("PUSHGATE_GIT_DIR", c.Git.Dir)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Advisory.APIKey = getEnv("GEMINI_API_KEY", c.Advisory.APIKey)
	c.Advisory.Model = getEnv("PUSHGATE_ADVISORY_MODEL", c.Advisory.Model)
	c.Audit.DatabaseURL = getEnv("PUSHGATE_AUDIT_DATABASE_URL", c.Audit.DatabaseURL)
	c.Archive.Endpoint = getEnv("PUSHGATE_ARCHIVE_ENDPOINT", c.Archive.Endpoint)
	c.Archive.AccessKey = getEnv("PUSHGATE_ARCHIVE_ACCESS_KEY", c.Archive.AccessKey)
	c.Archive.SecretKey = getEnv("PUSHGATE_ARCHIVE_SECRET_KEY", c.Archive.SecretKey)
	c.Archive.Region = getEnv("PUSHGATE_ARCHIVE_REGION", c.Archive.Region)
	c.Archive.Bucket = getEnv("PUSHGATE_ARCHIVE_BUCKET", c.Archive.Bucket)

	var err error
	if c.Style.MaxLineLength, err = getEnvAsInt("PUSHGATE_MAX_LINE_LENGTH", c.Style.MaxLineLength); err != nil {
		return err
	}
	if c.Workers, err = getEnvAsInt("PUSHGATE_WORKERS", c.Workers); err != nil {
		return err
	}
	if c.Git.Timeout, err = getEnvAsDuration("PUSHGATE_GIT_TIMEOUT", c.Git.Timeout); err != nil {
		return err
	}
	if c.Advisory.Enabled, err = getEnvAsBool("PUSHGATE_ADVISORY_ENABLED", c.Advisory.Enabled); err != nil {
		return err
	}
	if c.Archive.Enabled, err = getEnvAsBool("PUSHGATE_ARCHIVE_ENABLED", c.Archive.Enabled); err != nil {
		return err
	}
	if c.Archive.UseSSL, err = getEnvAsBool("PUSHGATE_ARCHIVE_USE_SSL", c.Archive.UseSSL); err != nil {
		return err
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Scope.Extensions) == 0 {
		return errors.New("at least one source extension is required")
	}
	for _, ext := range c.Scope.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("invalid source extension %q: must start with a dot", ext)
		}
	}
	for _, prefix := range c.Scope.ExemptPrefixes {
		if prefix == "" {
			return errors.New("exempt prefix must not be empty")
		}
	}
	if c.Style.MaxLineLength < 1 {
		return fmt.Errorf("invalid max line length: %d", c.Style.MaxLineLength)
	}
	if c.Workers < 1 {
		return fmt.Errorf("invalid worker count: %d", c.Workers)
	}
	if c.Git.Timeout <= 0 {
		return fmt.Errorf("invalid git timeout: %s", c.Git.Timeout)
	}
	if c.Advisory.Enabled && c.Advisory.APIKey == "" {
		return errors.New("GEMINI_API_KEY is required when advisory review is enabled")
	}
	if c.Archive.Enabled {
		if strings.TrimSpace(c.Archive.Endpoint) == "" {
			return errors.New("archive endpoint is required")
		}
		if strings.Contains(c.Archive.Endpoint, "://") {
			return fmt.Errorf("archive endpoint must not include scheme: %q", c.Archive.Endpoint)
		}
		if strings.TrimSpace(c.Archive.Bucket) == "" {
			return errors.New("archive bucket is required")
		}
	}
	return nil
}

// Helper functions to get environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

// getEnvAsSlice splits a comma list. A set but blank-only value clears the list.
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}

	values := make([]string, 0)
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

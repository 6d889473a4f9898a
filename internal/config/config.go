// Package config loads the Azure DevOps connection settings.
//
// Values are layered: built-in defaults, then an optional YAML or JSON file,
// then AZURE_DEVOPS_* environment variables. Command-line flags are applied
// by the caller after LoadConfig returns.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	apperrors "github.com/olgasafonova/azure-devops-mcp-server/internal/errors"
)

// Environment variables read by LoadConfig
const (
	EnvOrgURL     = "AZURE_DEVOPS_ORG_URL"
	EnvPAT        = "AZURE_DEVOPS_PAT"
	EnvProject    = "AZURE_DEVOPS_PROJECT"
	EnvSessionTTL = "AZURE_DEVOPS_SESSION_TTL"
	EnvTimeout    = "AZURE_DEVOPS_TIMEOUT"
	EnvLogLevel   = "AZURE_DEVOPS_LOG_LEVEL"
)

const (
	// DefaultSessionTTL bounds how long an authenticated session is reused
	DefaultSessionTTL = 10 * time.Minute

	// DefaultTimeout for the connection handshake
	DefaultTimeout = 30 * time.Second

	DefaultLogLevel  = "info"
	DefaultUserAgent = "azure-devops-mcp-server/1.0"
)

// Config holds Azure DevOps connection settings
type Config struct {
	// OrgURL is the organization URL (e.g., https://dev.azure.com/contoso)
	OrgURL string

	// PAT is the personal access token used for basic auth
	PAT string

	// Project is used when a tool call does not name a project
	Project string

	// SessionTTL is how long a handshake result is reused. Zero forces a
	// handshake on every operation.
	SessionTTL time.Duration

	// Timeout for the handshake probe
	Timeout time.Duration

	LogLevel    string
	UserAgent   string
	HTTPAddr    string // streamable HTTP transport; empty means stdio
	MetricsAddr string // Prometheus listener; empty disables it
}

// fileConfig mirrors Config for decoding. Durations stay strings so files can
// say "10m" instead of nanoseconds.
type fileConfig struct {
	OrgURL      *string `json:"org_url"`
	PAT         *string `json:"pat"`
	Project     *string `json:"project"`
	SessionTTL  *string `json:"session_ttl"`
	Timeout     *string `json:"timeout"`
	LogLevel    *string `json:"log_level"`
	UserAgent   *string `json:"user_agent"`
	HTTPAddr    *string `json:"http_addr"`
	MetricsAddr *string `json:"metrics_addr"`
}

// Default returns a Config with every optional field populated.
func Default() *Config {
	return &Config{
		SessionTTL: DefaultSessionTTL,
		Timeout:    DefaultTimeout,
		LogLevel:   DefaultLogLevel,
		UserAgent:  DefaultUserAgent,
	}
}

// LoadConfig builds a Config from defaults, the file at path (skipped when
// path is empty) and the environment. It does not validate the result.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := cfg.applyFile(data); err != nil {
			return nil, fmt.Errorf("error loading config from %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.OrgURL = strings.TrimRight(cfg.OrgURL, "/")
	return cfg, nil
}

func (c *Config) applyFile(data []byte) error {
	var fc fileConfig
	if err := yaml.UnmarshalStrict(data, &fc); err != nil {
		return err
	}

	setString(&c.OrgURL, fc.OrgURL)
	setString(&c.PAT, fc.PAT)
	setString(&c.Project, fc.Project)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.UserAgent, fc.UserAgent)
	setString(&c.HTTPAddr, fc.HTTPAddr)
	setString(&c.MetricsAddr, fc.MetricsAddr)

	if fc.SessionTTL != nil {
		d, err := parseDuration("session_ttl", *fc.SessionTTL)
		if err != nil {
			return err
		}
		c.SessionTTL = d
	}
	if fc.Timeout != nil {
		d, err := parseDuration("timeout", *fc.Timeout)
		if err != nil {
			return err
		}
		c.Timeout = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvOrgURL); ok {
		c.OrgURL = v
	}
	if v, ok := os.LookupEnv(EnvPAT); ok {
		c.PAT = v
	}
	if v, ok := os.LookupEnv(EnvProject); ok {
		c.Project = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(EnvSessionTTL); ok && v != "" {
		d, err := parseDuration(EnvSessionTTL, v)
		if err != nil {
			return err
		}
		c.SessionTTL = d
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok && v != "" {
		d, err := parseDuration(EnvTimeout, v)
		if err != nil {
			return err
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks that the settings needed to reach Azure DevOps are present.
func (c *Config) Validate() error {
	if c.OrgURL == "" {
		return apperrors.NewValidationError("org_url", "", EnvOrgURL+" is required")
	}
	u, err := url.Parse(c.OrgURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return apperrors.NewValidationError("org_url", c.OrgURL, "must be an absolute http(s) URL")
	}
	if c.PAT == "" {
		return apperrors.NewValidationError("pat", "", EnvPAT+" is required")
	}
	if c.Project == "" {
		return apperrors.NewValidationError("project", "", EnvProject+" is required")
	}
	if c.SessionTTL < 0 {
		return apperrors.NewValidationError("session_ttl", c.SessionTTL.String(), "must not be negative")
	}
	if c.Timeout <= 0 {
		return apperrors.NewValidationError("timeout", c.Timeout.String(), "must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, apperrors.NewValidationError("log_level", s, "must be one of debug, info, warn, error")
}

// LogValue keeps the token out of logs.
func (c *Config) LogValue() slog.Value {
	pat := ""
	if c.PAT != "" {
		pat = "[redacted]"
	}
	return slog.GroupValue(
		slog.String("org_url", c.OrgURL),
		slog.String("project", c.Project),
		slog.String("pat", pat),
		slog.Duration("session_ttl", c.SessionTTL),
		slog.Duration("timeout", c.Timeout),
	)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func parseDuration(field, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, apperrors.NewValidationError(field, v, "must be a duration such as 30s or 10m")
	}
	return d, nil
}

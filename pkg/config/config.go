// Package config holds the process-wide configuration for the Polaris MCP
// server. It is constructed once at startup from an optional JSON file plus
// environment overrides, and is read-only afterwards.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Cloud providers Polaris runs on.
var allowedProviders = map[string]bool{"aws": true, "gcp": true, "azure": true}

// Config describes the connection to one Polaris project and the server's
// own settings. JSON keys use camelCase for the optional config file.
type Config struct {
	Organization  string `json:"organization"`
	Region        string `json:"region"`
	CloudProvider string `json:"cloudProvider"`
	ProjectID     string `json:"projectId"`

	// Exactly one of APIKey / AccessToken must be set. APIKey wins when
	// both are present.
	APIKey      string `json:"apiKey,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`

	ServerName string `json:"serverName"`
	LogLevel   string `json:"logLevel"`

	DefaultQueryTimeoutMS int `json:"defaultQueryTimeoutMs"`
	MaxQueryLength        int `json:"maxQueryLength"`
}

// Default returns a Config with all defaulted fields filled in. Required
// fields (organization, project, credential) stay empty.
func Default() Config {
	return Config{
		Region:                "us-east-1",
		CloudProvider:         "aws",
		ServerName:            "Imply Polaris MCP Server",
		LogLevel:              "INFO",
		DefaultQueryTimeoutMS: 30000,
		MaxQueryLength:        10000,
	}
}

// Load builds the configuration: defaults, then the JSON file at path (if
// path is non-empty and the file exists), then environment overrides.
// The result is validated; an error here is fatal to the process.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Organization, "IMPLY_ORGANIZATION")
	setString(&c.Region, "IMPLY_REGION")
	setString(&c.CloudProvider, "IMPLY_CLOUD_PROVIDER")
	setString(&c.ProjectID, "IMPLY_PROJECT_ID")
	setString(&c.APIKey, "IMPLY_API_KEY")
	setString(&c.AccessToken, "IMPLY_ACCESS_TOKEN")
	setString(&c.ServerName, "MCP_SERVER_NAME")
	setString(&c.LogLevel, "LOG_LEVEL")
	setInt(&c.DefaultQueryTimeoutMS, "DEFAULT_QUERY_TIMEOUT_MS")
	setInt(&c.MaxQueryLength, "MAX_QUERY_LENGTH")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate checks the invariants that must hold before any request is made.
func (c *Config) Validate() error {
	if c.Organization == "" {
		return fmt.Errorf("organization is required (IMPLY_ORGANIZATION)")
	}
	if c.ProjectID == "" {
		return fmt.Errorf("project id is required (IMPLY_PROJECT_ID)")
	}
	provider := strings.ToLower(c.CloudProvider)
	if !allowedProviders[provider] {
		return fmt.Errorf("cloud provider must be one of aws, gcp, azure; got %q", c.CloudProvider)
	}
	c.CloudProvider = provider
	if c.APIKey == "" && c.AccessToken == "" {
		return fmt.Errorf("either an API key (IMPLY_API_KEY) or an access token (IMPLY_ACCESS_TOKEN) is required")
	}
	return nil
}

// BaseURL derives the API host for this organization.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("https://%s.%s.%s.api.imply.io", c.Organization, c.Region, c.CloudProvider)
}

// AuthHeader returns the Authorization header value. API keys use the
// Basic scheme, access tokens Bearer; the key takes precedence.
func (c *Config) AuthHeader() string {
	if c.APIKey != "" {
		return "Basic " + c.APIKey
	}
	return "Bearer " + c.AccessToken
}

// SlogLevel maps the configured log level name onto a slog.Level.
// Unrecognized names fall back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

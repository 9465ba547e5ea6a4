package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains dataset and log locations.
type Paths struct {
	DataFile string `toml:"data_file"`
	LogDir   string `toml:"log_dir"`
}

// Search contains defaults applied to search requests.
type Search struct {
	DefaultLimit int `toml:"default_limit"`
}

// YouTube contains configuration for the video search provider.
type YouTube struct {
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	MaxResults        int     `toml:"max_results"`
	CategoryID        string  `toml:"category_id"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
}

// LLM contains language-model connection settings used by analysis and query refinement.
type LLM struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	Model          string  `toml:"model"`
	Temperature    float64 `toml:"temperature"`
	MaxTokens      int     `toml:"max_tokens"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Analysis contains heuristic analyzer tuning.
type Analysis struct {
	// ReferenceYear anchors the recency bonus. Releases within five years of it
	// earn the larger bonus, within ten years the smaller one.
	ReferenceYear int `toml:"reference_year"`
}

// Trailers contains trailer resolution settings.
type Trailers struct {
	FillBatchSize           int `toml:"fill_batch_size"`
	BreakerFailureThreshold int `toml:"breaker_failure_threshold"`
	BreakerTimeoutSeconds   int `toml:"breaker_timeout_seconds"`
}

// VideoCache contains configuration for the durable video details cache.
type VideoCache struct {
	Enabled    bool   `toml:"enabled"`
	Path       string `toml:"path"`
	TTLSeconds int    `toml:"ttl_seconds"`
	MaxEntries int    `toml:"max_entries"`
}

// Server contains HTTP API settings.
type Server struct {
	Bind                   string   `toml:"bind"`
	Token                  string   `toml:"api_token"`
	CORSAllowedOrigins     []string `toml:"cors_allowed_origins"`
	RateLimitRequests      int      `toml:"rate_limit_requests"`
	RateLimitWindowSeconds int      `toml:"rate_limit_window_seconds"`
	ShutdownTimeoutSeconds int      `toml:"shutdown_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format     string `toml:"format"`
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// Config encapsulates all configuration values for cinesearch.
//
// Configuration sections by subsystem:
//   - Paths: catalog dataset and log directory
//   - Search: request defaults
//   - YouTube: trailer and related-video lookups
//   - LLM: content analysis override and query refinement
//   - Analysis: recommendation score tuning
//   - Trailers: batch fill size and circuit breaker
//   - VideoCache: sqlite cache of video details
//   - Server: HTTP API bind address
//   - Logging: log format, level, and rotation
type Config struct {
	Paths      Paths      `toml:"paths"`
	Search     Search     `toml:"search"`
	YouTube    YouTube    `toml:"youtube"`
	LLM        LLM        `toml:"llm"`
	Analysis   Analysis   `toml:"analysis"`
	Trailers   Trailers   `toml:"trailers"`
	VideoCache VideoCache `toml:"video_cache"`
	Server     Server     `toml:"server"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cinesearch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// YouTubeConfigured reports whether a usable video provider key is present.
func (c *Config) YouTubeConfigured() bool {
	return c != nil && c.YouTube.APIKey != ""
}

// LLMConfigured reports whether a usable language-model key is present.
func (c *Config) LLMConfigured() bool {
	return c != nil && c.LLM.APIKey != ""
}

// YouTubeTimeout returns the provider request timeout.
func (c *Config) YouTubeTimeout() time.Duration {
	return time.Duration(c.YouTube.TimeoutSeconds) * time.Second
}

// LLMTimeout returns the language-model request timeout.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

// BreakerTimeout returns how long the trailer circuit breaker stays open.
func (c *Config) BreakerTimeout() time.Duration {
	return time.Duration(c.Trailers.BreakerTimeoutSeconds) * time.Second
}

// VideoCacheTTL returns the lifetime of cached video details.
func (c *Config) VideoCacheTTL() time.Duration {
	return time.Duration(c.VideoCache.TTLSeconds) * time.Second
}

// RateLimitWindow returns the HTTP rate limit window.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Server.RateLimitWindowSeconds) * time.Second
}

// ShutdownTimeout bounds graceful HTTP shutdown.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

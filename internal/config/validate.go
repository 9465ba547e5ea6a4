package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Provider credentials are
// optional and never checked here.
func (c *Config) Validate() error {
	if c.Paths.DataFile == "" {
		return errors.New("paths.data_file must be set")
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > 100 {
		return errors.New("search.default_limit must be between 1 and 100")
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if c.Analysis.ReferenceYear < 1900 || c.Analysis.ReferenceYear > 3000 {
		return fmt.Errorf("analysis.reference_year %d is out of range", c.Analysis.ReferenceYear)
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.RateLimitRequests < 0 {
		return errors.New("server.rate_limit_requests must be zero (disabled) or positive")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindowSeconds <= 0 {
		return errors.New("server.rate_limit_window_seconds must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.MaxResults > 50 {
		return errors.New("youtube.max_results must be 50 or less")
	}
	if c.YouTube.RequestsPerSecond < 0 {
		return errors.New("youtube.requests_per_second must be zero (unlimited) or positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSearch()
	c.normalizeYouTube()
	c.normalizeLLM()
	c.normalizeTrailers()
	if err := c.normalizeVideoCache(); err != nil {
		return err
	}
	c.normalizeServer()
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	if value, ok := lookupEnv("CINESEARCH_DATA_FILE"); ok && strings.TrimSpace(c.Paths.DataFile) == defaultDataFile {
		c.Paths.DataFile = value
	}
	if strings.TrimSpace(c.Paths.DataFile) == "" {
		c.Paths.DataFile = defaultDataFile
	}
	var err error
	if c.Paths.DataFile, err = expandPath(strings.TrimSpace(c.Paths.DataFile)); err != nil {
		return fmt.Errorf("paths.data_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSearch() {
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = defaultSearchLimit
	}
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = cleanAPIKey(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		if value, ok := lookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = cleanAPIKey(value)
		}
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.MaxResults <= 0 {
		c.YouTube.MaxResults = defaultYouTubeMaxResults
	}
	c.YouTube.CategoryID = strings.TrimSpace(c.YouTube.CategoryID)
	if c.YouTube.TimeoutSeconds <= 0 {
		c.YouTube.TimeoutSeconds = defaultYouTubeTimeoutSeconds
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = cleanAPIKey(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := lookupEnv("LLM_API_KEY"); ok {
			c.LLM.APIKey = cleanAPIKey(value)
		} else if value, ok := lookupEnv("GROQ_API_KEY"); ok {
			c.LLM.APIKey = cleanAPIKey(value)
		}
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if value, ok := lookupEnv("GROQ_MODEL"); ok && (c.LLM.Model == "" || c.LLM.Model == defaultLLMModel) {
		c.LLM.Model = value
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeTrailers() {
	if c.Trailers.FillBatchSize <= 0 {
		c.Trailers.FillBatchSize = defaultFillBatchSize
	}
	if c.Trailers.BreakerFailureThreshold <= 0 {
		c.Trailers.BreakerFailureThreshold = defaultBreakerFailureThreshold
	}
	if c.Trailers.BreakerTimeoutSeconds <= 0 {
		c.Trailers.BreakerTimeoutSeconds = defaultBreakerTimeoutSeconds
	}
}

func (c *Config) normalizeVideoCache() error {
	if strings.TrimSpace(c.VideoCache.Path) == "" {
		c.VideoCache.Path = defaultVideoCachePath
	}
	var err error
	if c.VideoCache.Path, err = expandPath(strings.TrimSpace(c.VideoCache.Path)); err != nil {
		return fmt.Errorf("video_cache.path: %w", err)
	}
	if c.VideoCache.TTLSeconds <= 0 {
		c.VideoCache.TTLSeconds = defaultVideoCacheTTLSeconds
	}
	if c.VideoCache.MaxEntries <= 0 {
		c.VideoCache.MaxEntries = defaultVideoCacheMaxEntries
	}
	return nil
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.Token = strings.TrimSpace(c.Server.Token)
	if c.Server.Token == "" {
		if value, ok := lookupEnv("CINESEARCH_API_TOKEN"); ok {
			c.Server.Token = value
		}
	}
	origins := c.Server.CORSAllowedOrigins[:0]
	for _, origin := range c.Server.CORSAllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.Server.CORSAllowedOrigins = origins
	if c.Server.ShutdownTimeoutSeconds <= 0 {
		c.Server.ShutdownTimeoutSeconds = defaultShutdownTimeoutSeconds
	}
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// cleanAPIKey trims the key and treats the shipped placeholder as unset.
func cleanAPIKey(value string) string {
	value = strings.TrimSpace(value)
	if value == placeholderAPIKey {
		return ""
	}
	return value
}

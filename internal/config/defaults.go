package config

const (
	defaultConfigPath              = "~/.config/cinesearch/config.toml"
	defaultDataFile                = "~/.local/share/cinesearch/netflix_titles.csv"
	defaultLogDir                  = "~/.local/share/cinesearch/logs"
	defaultSearchLimit             = 10
	defaultYouTubeBaseURL          = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeMaxResults       = 5
	defaultYouTubeCategoryID       = "1"
	defaultYouTubeRequestsPerSec   = 5
	defaultYouTubeTimeoutSeconds   = 10
	defaultLLMBaseURL              = "https://api.groq.com/openai/v1/chat/completions"
	defaultLLMModel                = "llama-3.1-8b-instant"
	defaultLLMTemperature          = 0.7
	defaultLLMMaxTokens            = 1000
	defaultLLMTimeoutSeconds       = 30
	defaultReferenceYear           = 2024
	defaultFillBatchSize           = 50
	defaultBreakerFailureThreshold = 5
	defaultBreakerTimeoutSeconds   = 60
	defaultVideoCachePath          = "~/.cache/cinesearch/videos.db"
	defaultVideoCacheTTLSeconds    = 300
	defaultVideoCacheMaxEntries    = 1000
	defaultServerBind              = "127.0.0.1:8080"
	defaultRateLimitRequests       = 100
	defaultRateLimitWindowSeconds  = 60
	defaultShutdownTimeoutSeconds  = 10
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultLogMaxSizeMB            = 10
	defaultLogMaxBackups           = 5
	defaultLogMaxAgeDays           = 30

	// placeholderAPIKey is the value shipped in example environment files.
	placeholderAPIKey = "YOUR_API_KEY_HERE"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataFile: defaultDataFile,
			LogDir:   defaultLogDir,
		},
		Search: Search{
			DefaultLimit: defaultSearchLimit,
		},
		YouTube: YouTube{
			BaseURL:           defaultYouTubeBaseURL,
			MaxResults:        defaultYouTubeMaxResults,
			CategoryID:        defaultYouTubeCategoryID,
			RequestsPerSecond: defaultYouTubeRequestsPerSec,
			TimeoutSeconds:    defaultYouTubeTimeoutSeconds,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Temperature:    defaultLLMTemperature,
			MaxTokens:      defaultLLMMaxTokens,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Analysis: Analysis{
			ReferenceYear: defaultReferenceYear,
		},
		Trailers: Trailers{
			FillBatchSize:           defaultFillBatchSize,
			BreakerFailureThreshold: defaultBreakerFailureThreshold,
			BreakerTimeoutSeconds:   defaultBreakerTimeoutSeconds,
		},
		VideoCache: VideoCache{
			Enabled:    true,
			Path:       defaultVideoCachePath,
			TTLSeconds: defaultVideoCacheTTLSeconds,
			MaxEntries: defaultVideoCacheMaxEntries,
		},
		Server: Server{
			Bind:                   defaultServerBind,
			CORSAllowedOrigins:     []string{"*"},
			RateLimitRequests:      defaultRateLimitRequests,
			RateLimitWindowSeconds: defaultRateLimitWindowSeconds,
			ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}

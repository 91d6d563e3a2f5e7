package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/lexiqai/intro-scorer/internal/scoring"
	"github.com/lexiqai/intro-scorer/internal/sentiment"
)

// Config holds all configuration for the intro scorer service
type Config struct {
	// Server configuration
	Port             string `envconfig:"PORT" default:"8080"`
	GRPCPort         string `envconfig:"GRPC_PORT" default:"9090"`
	HTTPReadTimeout  int    `envconfig:"HTTP_READ_TIMEOUT" default:"15"`  // seconds
	HTTPWriteTimeout int    `envconfig:"HTTP_WRITE_TIMEOUT" default:"60"` // seconds, covers transcription
	HTTPIdleTimeout  int    `envconfig:"HTTP_IDLE_TIMEOUT" default:"60"`  // seconds

	// Comma separated origins allowed to call the API from a browser
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Input limits
	MinDurationSeconds float64 `envconfig:"MIN_DURATION_SECONDS" default:"10"`
	MaxDurationSeconds float64 `envconfig:"MAX_DURATION_SECONDS" default:"300"`
	MaxUploadBytes     int64   `envconfig:"MAX_UPLOAD_BYTES" default:"1048576"`  // transcript files
	MaxAudioBytes      int64   `envconfig:"MAX_AUDIO_BYTES" default:"26214400"` // audio files

	// Rubric behaviour
	GrammarCaseSource string `envconfig:"GRAMMAR_CASE_SOURCE" default:"normalized"` // normalized, original
	FillerMatchMode   string `envconfig:"FILLER_MATCH_MODE" default:"token"`        // token, phrase
	SentimentEngine   string `envconfig:"SENTIMENT_ENGINE" default:"vader"`         // vader, lexicon

	// Deepgram STT API configuration. Audio evaluation is disabled without a key.
	DeepgramAPIKey   string `envconfig:"DEEPGRAM_API_KEY" default:""`
	DeepgramModel    string `envconfig:"DEEPGRAM_MODEL" default:"nova-2"` // nova-2, enhanced, base
	DeepgramLanguage string `envconfig:"DEEPGRAM_LANGUAGE" default:"en"`
	STTTimeout       int    `envconfig:"STT_TIMEOUT" default:"45"` // seconds

	// Resilience configuration
	CircuitBreakerMaxFailures  int `envconfig:"CIRCUIT_BREAKER_MAX_FAILURES" default:"5"`   // Failures before opening circuit
	CircuitBreakerResetTimeout int `envconfig:"CIRCUIT_BREAKER_RESET_TIMEOUT" default:"30"` // Seconds before attempting recovery
	RetryMaxAttempts           int `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialBackoff        int `envconfig:"RETRY_INITIAL_BACKOFF" default:"100"` // milliseconds

	// Voice activity summary for audio uploads
	VADEnergyThreshold float64 `envconfig:"VAD_ENERGY_THRESHOLD" default:"500.0"` // RMS energy threshold
	VADFrameMillis     int     `envconfig:"VAD_FRAME_MS" default:"20"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`       // debug, info, warn, error
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`     // Pretty print logs (for development)
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"` // Enable Prometheus metrics
}

// Load reads configuration from environment variables
// It first attempts to load from .env file if it exists, then from environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load .env file (useful for containerized deployments)
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field rules envconfig cannot express
func (c *Config) Validate() error {
	if c.MinDurationSeconds <= 0 {
		return fmt.Errorf("MIN_DURATION_SECONDS must be positive, got %v", c.MinDurationSeconds)
	}
	if c.MaxDurationSeconds < c.MinDurationSeconds {
		return fmt.Errorf("MAX_DURATION_SECONDS (%v) must not be below MIN_DURATION_SECONDS (%v)",
			c.MaxDurationSeconds, c.MinDurationSeconds)
	}
	if c.MaxUploadBytes <= 0 || c.MaxAudioBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES and MAX_AUDIO_BYTES must be positive")
	}

	if _, err := scoring.ParseCaseSource(c.GrammarCaseSource); err != nil {
		return fmt.Errorf("GRAMMAR_CASE_SOURCE: %w", err)
	}
	if _, err := scoring.ParseFillerMode(c.FillerMatchMode); err != nil {
		return fmt.Errorf("FILLER_MATCH_MODE: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(c.SentimentEngine)) {
	case "", sentiment.EngineVADER, sentiment.EngineLexicon:
	default:
		return fmt.Errorf("SENTIMENT_ENGINE must be %s or %s, got %q", sentiment.EngineVADER, sentiment.EngineLexicon, c.SentimentEngine)
	}
	return nil
}

// STTEnabled reports whether audio evaluation can be offered
func (c *Config) STTEnabled() bool {
	return strings.TrimSpace(c.DeepgramAPIKey) != ""
}

package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all configuration for the data insights service
type Config struct {
	// Server configuration
	Port string `env:"PORT,default=8080"`

	// Data source base URLs
	WorldBankURL string `env:"WORLDBANK_URL,default=https://api.worldbank.org/v2"`
	WHOURL       string `env:"WHO_URL,default=https://ghoapi.azureedge.net/api"`
	FAOURL       string `env:"FAO_URL,default=https://fenixservices.fao.org/faostat/api/v1/en"`
	OpenMeteoURL string `env:"OPENMETEO_URL,default=https://archive-api.open-meteo.com/v1"`
	NASAPowerURL string `env:"NASA_POWER_URL,default=https://power.larc.nasa.gov/api/temporal/daily"`
	NASAAPIKey   string `env:"NASA_API_KEY"`

	// Outbound HTTP behavior
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	MaxRetries       int           `env:"MAX_RETRIES,default=3"`
	RetryWait        time.Duration `env:"RETRY_WAIT,default=500ms"`
	FetchConcurrency int           `env:"FETCH_CONCURRENCY,default=4"`

	// Response cache (0 disables caching)
	CacheTTL time.Duration `env:"CACHE_TTL,default=15m"`

	// Report narrative (optional; template fallback when unset)
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL,default=gpt-4o-mini"`

	// Snapshot storage
	StorageMode      string `env:"STORAGE_MODE,default=local"`
	LocalSnapshotDir string `env:"LOCAL_SNAPSHOT_DIR,default=./snapshots"`
	GCSBucket        string `env:"GCS_BUCKET"`

	// Service configuration
	Environment string `env:"ENVIRONMENT,default=development"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.StorageMode != "local" && c.StorageMode != "gcs" {
		return fmt.Errorf("STORAGE_MODE must be \"local\" or \"gcs\", got %q", c.StorageMode)
	}
	if c.StorageMode == "gcs" && c.GCSBucket == "" {
		return fmt.Errorf("GCS_BUCKET is required when STORAGE_MODE=gcs")
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.FetchConcurrency)
	}
	return nil
}

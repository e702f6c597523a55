// internal/catalog/enrichment/config.go
package enrichment

import "time"

const (
	DefaultPlaceholderURL = "https://dummyimage.com/600x400/cccccc/000000.png&text=No+Image"
	DefaultModel          = "text-embedding-3-small"
	DefaultDimensions     = 256
)

type Config struct {
	Concurrency    int     // 1 runs products sequentially
	RatePerSecond  float64 // shared across both stages, 0 disables throttling
	Burst          int
	ProgressEvery  int
	PlaceholderURL string
	CacheTTL       time.Duration

	ImageSearchURL     string
	ImageSearchAPIKey  string
	ImageSearchTimeout time.Duration

	EmbeddingURL     string // empty uses the provider default
	EmbeddingAPIKey  string
	EmbeddingModel   string
	Dimensions       int
	EmbeddingTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Concurrency:        4,
		Burst:              1,
		ProgressEvery:      10,
		PlaceholderURL:     DefaultPlaceholderURL,
		CacheTTL:           7 * 24 * time.Hour,
		ImageSearchURL:     "https://api.exa.ai",
		ImageSearchTimeout: 10 * time.Second,
		EmbeddingModel:     DefaultModel,
		Dimensions:         DefaultDimensions,
		EmbeddingTimeout:   30 * time.Second,
	}
}

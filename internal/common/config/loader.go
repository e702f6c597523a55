// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "storefront/internal/common/errors"
)

const (
	DefaultPlaceholderURL = "https://dummyimage.com/600x400/cccccc/000000.png&text=No+Image"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultDimensions     = 256

	// MaxDescriptionLimit keeps truncated descriptions within the index schema's 2003 runes.
	MaxDescriptionLimit = 2000
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets and endpoints from the conventional env names when
// the YAML left them blank.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Enrichment.Embedding.APIKey, "OPENAI_API_KEY")
	setIfEmpty(&cfg.Enrichment.ImageSearch.APIKey, "EXA_API_KEY")

	setIfEmpty(&cfg.Database.Elasticsearch.URL, "ELASTICSEARCH_URL")
	setIfEmpty(&cfg.Database.Elasticsearch.Username, "ELASTICSEARCH_USERNAME")
	setIfEmpty(&cfg.Database.Elasticsearch.Password, "ELASTICSEARCH_PASSWORD")
	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDRESS")

	setIfEmpty(&cfg.Agent.AppID, "AGENT_APP_ID")
	setIfEmpty(&cfg.Agent.APIKey, "AGENT_API_KEY")
	setIfEmpty(&cfg.Agent.AgentID, "AGENT_ID")
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront"
	}

	if cfg.Catalog.SourceDir == "" {
		cfg.Catalog.SourceDir = "./data"
	}
	if cfg.Catalog.MaxPerSource == 0 {
		cfg.Catalog.MaxPerSource = 50
	}
	if cfg.Catalog.DescriptionLimit == 0 {
		cfg.Catalog.DescriptionLimit = MaxDescriptionLimit
	}

	if cfg.Enrichment.Concurrency == 0 {
		cfg.Enrichment.Concurrency = 4
	}
	if cfg.Enrichment.Burst == 0 {
		cfg.Enrichment.Burst = 1
	}
	if cfg.Enrichment.ProgressEvery == 0 {
		cfg.Enrichment.ProgressEvery = 10
	}
	if cfg.Enrichment.CacheTTL == 0 {
		cfg.Enrichment.CacheTTL = 7 * 24 * 3600 * 1000
	}
	if cfg.Enrichment.PlaceholderURL == "" {
		cfg.Enrichment.PlaceholderURL = DefaultPlaceholderURL
	}
	if cfg.Enrichment.ImageSearch.BaseURL == "" {
		cfg.Enrichment.ImageSearch.BaseURL = "https://api.exa.ai"
	}
	if cfg.Enrichment.ImageSearch.Timeout == 0 {
		cfg.Enrichment.ImageSearch.Timeout = 10000
	}
	if cfg.Enrichment.Embedding.Model == "" {
		cfg.Enrichment.Embedding.Model = DefaultEmbeddingModel
	}
	if cfg.Enrichment.Embedding.Dimensions == 0 {
		cfg.Enrichment.Embedding.Dimensions = DefaultDimensions
	}
	if cfg.Enrichment.Embedding.Timeout == 0 {
		cfg.Enrichment.Embedding.Timeout = 30000
	}

	if cfg.Index.Name == "" {
		cfg.Index.Name = "products"
	}
	if cfg.Index.ChunkDocs == 0 {
		cfg.Index.ChunkDocs = 500
	}
	if cfg.Index.ChunkBytes == 0 {
		cfg.Index.ChunkBytes = 5 << 20
	}
	if cfg.Index.Timeout == 0 {
		cfg.Index.Timeout = 60000
	}

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.URL == "" {
		cfg.Database.Elasticsearch.URL = "http://localhost:9200"
	}

	if cfg.Agent.Timeout == 0 {
		cfg.Agent.Timeout = 60000
	}
	if cfg.Agent.BaseURL == "" && cfg.Agent.AppID != "" {
		cfg.Agent.BaseURL = fmt.Sprintf("https://%s.algolia.net", cfg.Agent.AppID)
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig rejects values that are wrong regardless of which command runs.
// Missing credentials are checked per command by ValidateForIngest / ValidateForChat.
func validateConfig(cfg *Config) error {
	if cfg.Catalog.MaxPerSource < 0 {
		return fmt.Errorf("catalog.max_per_source must not be negative")
	}
	if cfg.Catalog.DescriptionLimit < 1 || cfg.Catalog.DescriptionLimit > MaxDescriptionLimit {
		return fmt.Errorf("catalog.description_limit must be between 1 and %d", MaxDescriptionLimit)
	}
	if cfg.Enrichment.Concurrency < 1 {
		return fmt.Errorf("enrichment.concurrency must be at least 1")
	}
	if cfg.Enrichment.RatePerSecond < 0 {
		return fmt.Errorf("enrichment.rate_per_second must not be negative")
	}
	if cfg.Enrichment.Embedding.Dimensions < 1 {
		return fmt.Errorf("enrichment.embedding.dimensions must be positive")
	}
	if cfg.Index.ChunkDocs < 1 || cfg.Index.ChunkBytes < 1 {
		return fmt.Errorf("index.chunk_docs and index.chunk_bytes must be positive")
	}
	return nil
}

// ValidateForIngest checks what the ingest, seed and index commands need.
// Image search and embedding keys are optional; without them those stages degrade.
func ValidateForIngest(cfg *Config) error {
	var missing []string
	if len(cfg.Database.Elasticsearch.GetAddresses()) == 0 {
		missing = append(missing, "database.elasticsearch.url")
	}
	if cfg.Index.Name == "" {
		missing = append(missing, "index.name")
	}
	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		missing = append(missing, "database.redis.address")
	}
	if len(missing) > 0 {
		return apperrors.NewConfigurationMissingError(missing...)
	}
	return nil
}

// ValidateForChat checks the agent credentials used by the chat proxy.
func ValidateForChat(cfg *Config) error {
	return cfg.Agent.Validate()
}

// Validate reports which agent settings are blank.
func (a AgentConfig) Validate() error {
	var missing []string
	if a.AppID == "" {
		missing = append(missing, "agent.app_id")
	}
	if a.APIKey == "" {
		missing = append(missing, "agent.api_key")
	}
	if a.AgentID == "" {
		missing = append(missing, "agent.agent_id")
	}
	if len(missing) > 0 {
		return apperrors.NewConfigurationMissingError(missing...)
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

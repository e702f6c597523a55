// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Index      IndexConfig      `mapstructure:"index"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// GetAddresses returns every configured node, falling back to URL.
func (e ElasticsearchConfig) GetAddresses() []string {
	if len(e.Addresses) > 0 {
		return e.Addresses
	}
	if e.URL != "" {
		return []string{e.URL}
	}
	return nil
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Pipeline Configuration Sections ---

// CatalogConfig drives source discovery and parsing.
type CatalogConfig struct {
	SourceDir        string `mapstructure:"source_dir"`
	MaxPerSource     int    `mapstructure:"max_per_source"`
	DescriptionLimit int    `mapstructure:"description_limit"`
}

// EnrichmentConfig holds the image lookup and embedding settings.
type EnrichmentConfig struct {
	Concurrency    int     `mapstructure:"concurrency"`
	RatePerSecond  float64 `mapstructure:"rate_per_second"` // 0 disables throttling
	Burst          int     `mapstructure:"burst"`
	CacheTTL       int     `mapstructure:"cache_ttl"` // milliseconds
	ProgressEvery  int     `mapstructure:"progress_every"`
	PlaceholderURL string  `mapstructure:"placeholder_url"`

	ImageSearch struct {
		BaseURL  string `mapstructure:"base_url"`
		APIKey   string `mapstructure:"api_key"`
		Timeout  int    `mapstructure:"timeout"`  // milliseconds
		Resolver string `mapstructure:"resolver"` // "result" or empty for none
	} `mapstructure:"image_search"`

	Embedding struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Model      string `mapstructure:"model"`
		Dimensions int    `mapstructure:"dimensions"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"embedding"`
}

// IndexConfig holds the search index write settings.
type IndexConfig struct {
	Name       string `mapstructure:"name"`
	ChunkDocs  int    `mapstructure:"chunk_docs"`
	ChunkBytes int    `mapstructure:"chunk_bytes"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

// AgentConfig holds the conversational agent endpoint settings.
type AgentConfig struct {
	AppID   string `mapstructure:"app_id"`
	APIKey  string `mapstructure:"api_key"`
	AgentID string `mapstructure:"agent_id"`
	BaseURL string `mapstructure:"base_url"` // defaults to https://<app_id>.algolia.net
	Timeout int    `mapstructure:"timeout"`  // milliseconds
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

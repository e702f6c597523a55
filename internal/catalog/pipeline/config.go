// internal/catalog/pipeline/config.go
package pipeline

// Config holds the run level settings. Component settings live with each component.
type Config struct {
	SourceDir string // scanned by RunDir when no directory is given
}

func LoadConfig() *Config {
	return &Config{
		SourceDir: "./data",
	}
}

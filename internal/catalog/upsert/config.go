// internal/catalog/upsert/config.go
package upsert

import "time"

type Config struct {
	Index      string
	ChunkDocs  int
	ChunkBytes int
	Dimensions int
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Index:      "products",
		ChunkDocs:  500,
		ChunkBytes: 5 << 20,
		Dimensions: 256,
		Timeout:    60 * time.Second,
	}
}

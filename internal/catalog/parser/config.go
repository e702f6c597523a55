// internal/catalog/parser/config.go
package parser

type Config struct {
	MaxPerSource     int // 0 or less disables the cap
	DescriptionLimit int // runes
}

func LoadConfig() *Config {
	return &Config{
		MaxPerSource:     50,
		DescriptionLimit: 2000,
	}
}

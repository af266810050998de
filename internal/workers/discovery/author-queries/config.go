// internal/workers/discovery/author-queries/config.go
package authorqueries

import "time"

type Config struct {
	Timeout    time.Duration
	MaxQueries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    2 * time.Minute,
		MaxQueries: 5,
	}
}

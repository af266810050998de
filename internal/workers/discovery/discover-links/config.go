// internal/workers/discovery/discover-links/config.go
package discoverlinks

import "time"

type Config struct {
	Timeout        time.Duration
	DefaultBackend string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:        5 * time.Minute,
		DefaultBackend: "api",
	}
}

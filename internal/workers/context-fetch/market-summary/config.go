// internal/workers/context-fetch/market-summary/config.go
package marketsummary

import "time"

type Config struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		URL:       "https://www.psx.com.pk/market-summary/",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		Timeout:   10 * time.Second,
	}
}

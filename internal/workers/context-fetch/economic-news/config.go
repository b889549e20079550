// internal/workers/context-fetch/economic-news/config.go
package economicnews

import "time"

type Config struct {
	BaseURL    string
	APIKey     string
	Query      string
	Language   string
	SortBy     string
	WindowDays int
	PageSize   int
	Timeout    time.Duration
}

// DefaultConfig mirrors the NewsAPI query the economy assistant relies on.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    "https://newsapi.org/v2/everything",
		Query:      "Pakistan economy",
		Language:   "en",
		SortBy:     "publishedAt",
		WindowDays: 7,
		PageSize:   5,
		Timeout:    30 * time.Second,
	}
}

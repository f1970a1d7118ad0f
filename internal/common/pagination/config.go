// Package pagination implements offset pagination: query parsing, page math
// and request metrics.
package pagination

import "mediawatch/pkg/config"

// Config holds pagination defaults and limits.
type Config struct {
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig returns page=1, limit=20, max=100.
func DefaultConfig() Config {
	return Config{
		DefaultPage:  1,
		DefaultLimit: 20,
		MaxLimit:     100,
	}
}

// LoadFromEnv reads PAGINATION_DEFAULT_PAGE, PAGINATION_DEFAULT_LIMIT and
// PAGINATION_MAX_LIMIT. Inconsistent values fall back to DefaultConfig.
func LoadFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		DefaultPage:  config.GetEnvInt("PAGINATION_DEFAULT_PAGE", def.DefaultPage),
		DefaultLimit: config.GetEnvInt("PAGINATION_DEFAULT_LIMIT", def.DefaultLimit),
		MaxLimit:     config.GetEnvInt("PAGINATION_MAX_LIMIT", def.MaxLimit),
	}
	if cfg.DefaultPage < 1 || cfg.MaxLimit < 1 || cfg.DefaultLimit < 1 || cfg.DefaultLimit > cfg.MaxLimit {
		return def
	}
	return cfg
}

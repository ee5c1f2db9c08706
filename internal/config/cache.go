package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// CacheConfig defines settings for the response cache middleware.
// When Enabled is false or no Redis client is configured, caching is
// disabled.  Methods lists the HTTP methods to cache; TTL bounds how stale
// a cached user list or slot list may get.  KeyStrategy decides which
// parts of the request form the key.
type CacheConfig struct {
	Enabled      bool          `env:"CACHE_ENABLED" envDefault:"true"`
	MethodList   []string      `env:"CACHE_METHODS" envDefault:"GET" envSeparator:","`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"30s"`
	KeyStrategy  string        `env:"CACHE_KEY_STRATEGY" envDefault:"route_query"`
	Prefix       string        `env:"CACHE_PREFIX" envDefault:"cache"`
	MaxBodyBytes int           `env:"CACHE_MAX_BODY_BYTES" envDefault:"1048576"`

	Methods map[string]bool // upper-cased MethodList, filled by LoadCacheConfig
}

// LoadCacheConfig reads the cache settings.  Unparseable values fall back
// to the defaults so a bad cache setting never blocks startup.
func LoadCacheConfig() CacheConfig {
	cfg, err := env.ParseAs[CacheConfig]()
	if err != nil {
		cfg = CacheConfig{
			Enabled:      true,
			MethodList:   []string{"GET"},
			TTL:          30 * time.Second,
			KeyStrategy:  "route_query",
			Prefix:       "cache",
			MaxBodyBytes: 1 << 20,
		}
	}
	cfg.Methods = parseMethods(cfg.MethodList)
	return cfg
}

func parseMethods(list []string) map[string]bool {
	m := map[string]bool{}
	for _, p := range list {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}

package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// StreamConfig configures the hosted video provider that materialises
// interview sessions.  With an empty APIKey the server falls back to the
// in-process session provider.
type StreamConfig struct {
	APIKey    string        `env:"STREAM_API_KEY"`
	APISecret string        `env:"STREAM_API_SECRET"`
	BaseURL   string        `env:"STREAM_BASE_URL" envDefault:"https://video.stream-io-api.com"`
	CallType  string        `env:"STREAM_CALL_TYPE" envDefault:"default"`
	Timeout   time.Duration `env:"STREAM_TIMEOUT" envDefault:"10s"`
}

// Enabled reports whether both credentials are present.
func (c StreamConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// LoadStreamConfig reads the provider settings.
func LoadStreamConfig() (StreamConfig, error) {
	cfg, err := env.ParseAs[StreamConfig]()
	if err != nil {
		return StreamConfig{}, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.CallType == "" {
		cfg.CallType = "default"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return cfg, nil
}

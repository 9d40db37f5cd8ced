package feed

import (
	"time"

	"codeberg.org/mutker/envstation/internal/errors"
)

const (
	defaultBaseURL = "https://api.thingspeak.com"
	defaultTimeout = 10 * time.Second
)

type Config struct {
	ChannelID  string
	ReadAPIKey string
	BaseURL    string
	Timeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
	}
}

func (c *Config) Validate() error {
	if c.ChannelID == "" {
		return errors.WithData(ErrInvalidConfig, "channel id is required")
	}
	if c.ReadAPIKey == "" {
		return errors.WithData(ErrInvalidConfig, "read api key is required")
	}
	if c.BaseURL == "" {
		return errors.WithData(ErrInvalidConfig, "base url is required")
	}

	return nil
}

func (c *Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}

	return c.Timeout
}

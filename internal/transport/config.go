package transport

import (
	"time"

	"codeberg.org/mutker/envstation/internal/errors"
)

const (
	defaultBroker  = "mqtt3.thingspeak.com"
	defaultPort    = 1883
	defaultBaseURL = "https://api.thingspeak.com"
	defaultTimeout = 5 * time.Second
)

type Config struct {
	// Shared channel credentials
	ChannelID   string
	WriteAPIKey string

	// Broker session settings
	Broker     string
	Port       int
	Username   string
	MQTTAPIKey string

	// Update endpoint settings
	BaseURL string

	// Bound on any single network operation
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Broker:  defaultBroker,
		Port:    defaultPort,
		BaseURL: defaultBaseURL,
		Timeout: defaultTimeout,
	}
}

func (c Config) validateCommon() error {
	if c.ChannelID == "" {
		return errors.WithData(ErrInvalidConfig, "channel id is required")
	}
	if c.WriteAPIKey == "" {
		return errors.WithData(ErrInvalidConfig, "write api key is required")
	}
	return nil
}

func (c Config) validateMQTT() error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	if c.Broker == "" {
		return errors.WithData(ErrInvalidConfig, "broker is required")
	}
	if c.Port <= 0 {
		return errors.WithData(ErrInvalidConfig, "broker port must be positive")
	}
	if c.Username == "" || c.MQTTAPIKey == "" {
		return errors.WithData(ErrInvalidConfig, "broker credentials are required")
	}
	return nil
}

func (c Config) validateHTTP() error {
	if err := c.validateCommon(); err != nil {
		return err
	}
	if c.BaseURL == "" {
		return errors.WithData(ErrInvalidConfig, "base url is required")
	}
	return nil
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}

package status

import "codeberg.org/mutker/envstation/internal/errors"

const defaultAddr = ":8080"

type Config struct {
	Enabled bool
	Addr    string
}

func DefaultConfig() Config {
	return Config{
		Enabled: false,
		Addr:    defaultAddr,
	}
}

func (c *Config) Validate() error {
	if c.Enabled && c.Addr == "" {
		return errors.WithData(ErrInvalidConfig, "listen address is required")
	}

	return nil
}

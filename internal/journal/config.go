package journal

import "codeberg.org/mutker/envstation/internal/errors"

const (
	defaultDirPerm = 0o755
	defaultDBPath  = "/var/lib/envstation/journal.db"
)

type Config struct {
	DBPath  string
	Enabled bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:  defaultDBPath,
		Enabled: false, // Disabled by default
	}
}

func (c Config) Validate() error {
	// Only validate DBPath if the journal is enabled
	if c.Enabled && c.DBPath == "" {
		return errors.New(ErrInvalidDBPath)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mutker/envstation/internal/config"
	"codeberg.org/mutker/envstation/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "envstation.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

const stationConfig = `
channel_id = "2468013"
write_api_key = "WRITEKEY"
read_api_key = "READKEY"
username = "mwa0000012345678"
mqtt_api_key = "MQTTKEY"
`

func TestLoad(t *testing.T) {
	configContent := stationConfig + `
broker = "mqtt3.example.org"
port = 8883
interval = 60
stations = 2
journal = true
journal_db = "/tmp/envstation/journal.db"
status = true
status_addr = ":9090"
verbose = true
`
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, configContent))

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.Equal(t, "2468013", cfg.ChannelID, "Expected ChannelID 2468013")
	assert.Equal(t, "WRITEKEY", cfg.WriteAPIKey, "Expected WriteAPIKey WRITEKEY")
	assert.Equal(t, "mwa0000012345678", cfg.Username, "Expected Username from file")
	assert.Equal(t, "mqtt3.example.org", cfg.Broker, "Expected Broker override")
	assert.Equal(t, 8883, cfg.Port, "Expected Port 8883")
	assert.Equal(t, 60, cfg.Interval, "Expected Interval 60")
	assert.Equal(t, 2, cfg.Stations, "Expected Stations 2")
	assert.True(t, cfg.Journal, "Expected Journal true")
	assert.Equal(t, "/tmp/envstation/journal.db", cfg.JournalDB)
	assert.True(t, cfg.Status, "Expected Status true")
	assert.Equal(t, ":9090", cfg.StatusAddr, "Expected StatusAddr :9090")
	assert.True(t, cfg.Verbose, "Expected Verbose true")
	assert.Equal(t, config.ModeStation, cfg.Mode())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, stationConfig))

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err, "Failed to load config")

	assert.Equal(t, config.DefaultInterval, cfg.Interval, "Expected default Interval 30")
	assert.Equal(t, 1, cfg.Stations, "Expected default Stations 1")
	assert.Equal(t, "mqtt3.thingspeak.com", cfg.Broker, "Expected default Broker")
	assert.Equal(t, 1883, cfg.Port, "Expected default Port 1883")
	assert.Equal(t, "https://api.thingspeak.com", cfg.APIBaseURL, "Expected default APIBaseURL")
	assert.Equal(t, config.DefaultHours, cfg.Hours, "Expected default Hours 5")
	assert.False(t, cfg.Journal, "Expected default Journal false")
	assert.Equal(t, ":8080", cfg.StatusAddr, "Expected default StatusAddr")
	assert.False(t, cfg.Debug, "Expected default Debug false")
}

func TestFlagsOverrideFile(t *testing.T) {
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, stationConfig+"interval = 60\n"))

	cfg, err := config.Load(config.WithArgs([]string{"--interval", "10", "--debug"}))
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Interval, "Expected flag to override the file")
	assert.True(t, cfg.Debug, "Expected Debug set by flag")
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, stationConfig))
	t.Setenv("ENVSTATION_WRITE_API_KEY", "ENVKEY")

	cfg, err := config.Load(config.WithArgs(nil))
	require.NoError(t, err)

	assert.Equal(t, "ENVKEY", cfg.WriteAPIKey, "Expected environment to override the file")
}

func TestMissingWriteKeyFails(t *testing.T) {
	configContent := `
channel_id = "2468013"
read_api_key = "READKEY"
`
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, configContent))

	_, err := config.Load(config.WithArgs(nil))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMissingCredentials), "expected missing credentials, got %v", err)
}

func TestRequestOnlySkipsMQTTCredentials(t *testing.T) {
	configContent := `
channel_id = "2468013"
write_api_key = "WRITEKEY"
`
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, configContent))

	_, err := config.Load(config.WithArgs(nil))
	require.Error(t, err, "station mode without MQTT credentials should fail")

	cfg, err := config.Load(config.WithArgs([]string{"--request-only"}))
	require.NoError(t, err, "request-only mode needs no MQTT credentials")
	assert.True(t, cfg.RequestOnly)
}

func TestLatestModeRequiresReadKey(t *testing.T) {
	configContent := `
channel_id = "2468013"
write_api_key = "WRITEKEY"
`
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, configContent))

	_, err := config.Load(config.WithArgs([]string{"--latest"}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrMissingCredentials))

	t.Setenv("ENVSTATION_READ_API_KEY", "READKEY")

	cfg, err := config.Load(config.WithArgs([]string{"--latest", "--refresh", "10"}))
	require.NoError(t, err)
	assert.Equal(t, config.ModeLatest, cfg.Mode())
	assert.Equal(t, 10, cfg.Refresh)
}

func TestHistoryModeValidatesChannel(t *testing.T) {
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, stationConfig))

	cfg, err := config.Load(config.WithArgs([]string{"--history", "co2", "--hours", "12"}))
	require.NoError(t, err)
	assert.Equal(t, config.ModeHistory, cfg.Mode())
	assert.Equal(t, "co2", cfg.History)
	assert.Equal(t, 12, cfg.Hours)

	_, err = config.Load(config.WithArgs([]string{"--history", "wind"}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidChannel), "expected invalid channel, got %v", err)
}

func TestConflictingModesFail(t *testing.T) {
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, stationConfig))

	_, err := config.Load(config.WithArgs([]string{"--latest", "--history", "co2"}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidConfig))
}

func TestStationIDWithMultipleStationsFails(t *testing.T) {
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, stationConfig))

	_, err := config.Load(config.WithArgs([]string{"--stations", "2", "--station-id", "station_custom1"}))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidConfig))
}

func TestLoadConfigFileInvalidFormat(t *testing.T) {
	t.Setenv("ENVSTATION_CONFIG", writeConfigFile(t, "This is not a valid TOML file\n"))

	_, err := config.Load(config.WithArgs(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read configuration")
}

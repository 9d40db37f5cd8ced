package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"codeberg.org/mutker/envstation/internal/errors"
	"codeberg.org/mutker/envstation/internal/telemetry"
)

const (
	configName    = "envstation"
	configType    = "toml"
	configPathEnv = "ENVSTATION_CONFIG"
	envPrefix     = "ENVSTATION"

	DefaultInterval = 30
	DefaultHours    = 5

	defaultBroker     = "mqtt3.thingspeak.com"
	defaultPort       = 1883
	defaultBaseURL    = "https://api.thingspeak.com"
	defaultJournalDB  = "/var/lib/envstation/journal.db"
	defaultStatusAddr = ":8080"
)

type Config struct {
	// Channel credentials
	ChannelID   string `mapstructure:"channel_id"`
	WriteAPIKey string `mapstructure:"write_api_key"`
	ReadAPIKey  string `mapstructure:"read_api_key"`
	Username    string `mapstructure:"username"`
	MQTTAPIKey  string `mapstructure:"mqtt_api_key"`

	// Endpoints
	Broker     string `mapstructure:"broker"`
	Port       int    `mapstructure:"port" validate:"min=1,max=65535"`
	APIBaseURL string `mapstructure:"api_base_url"`

	// Station loop
	Interval    int    `mapstructure:"interval" validate:"min=1"`
	Count       int    `mapstructure:"count" validate:"min=0"`
	Stations    int    `mapstructure:"stations" validate:"min=1"`
	StationID   string `mapstructure:"station_id"`
	RequestOnly bool   `mapstructure:"request_only"`

	// Feed display
	Latest  bool   `mapstructure:"latest"`
	Refresh int    `mapstructure:"refresh" validate:"min=0"`
	History string `mapstructure:"history"`
	Hours   int    `mapstructure:"hours" validate:"min=1"`
	NoPlot  bool   `mapstructure:"no_plot"`

	// Journal
	Journal   bool   `mapstructure:"journal"`
	JournalDB string `mapstructure:"journal_db"`

	// Status server
	Status     bool   `mapstructure:"status"`
	StatusAddr string `mapstructure:"status_addr"`

	// Logging
	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"`
}

var validate = validator.New()

// Load reads configuration from flags, environment variables and the
// configuration file, then validates the result. Flags override the file;
// environment variables use the ENVSTATION_ prefix.
func Load(opts ...Option) (*Config, error) {
	o := options{args: os.Args[1:]}
	for _, opt := range opts {
		opt(&o)
	}

	fs := pflag.NewFlagSet("envstation", pflag.ContinueOnError)
	fs.Int("interval", DefaultInterval, "Seconds between readings")
	fs.Int("count", 0, "Stop after this many readings (0 runs until interrupted)")
	fs.Int("stations", 1, "Number of stations to run")
	fs.String("station-id", "", "Custom station ID (autogenerated when empty)")
	fs.Bool("request-only", false, "Publish over HTTP only, skipping MQTT")
	fs.Bool("latest", false, "Display the latest entry and exit")
	fs.Int("refresh", 0, "Refresh the latest display every N seconds")
	fs.String("history", "", "Display a sensor's history (temperature, humidity or co2)")
	fs.Int("hours", DefaultHours, "Hours of history to look back")
	fs.Bool("no-plot", false, "Skip chart generation in history mode")
	fs.Bool("journal", false, "Record publish outcomes to the local journal")
	fs.String("journal-db", defaultJournalDB, "Path to the journal database")
	fs.Bool("status", false, "Serve fleet status over HTTP")
	fs.String("status-addr", defaultStatusAddr, "Status server listen address")
	fs.Bool("debug", false, "Enable debugging mode")
	fs.Bool("verbose", false, "Enable verbose logging")
	fs.String("config", "", "Path to the configuration file")

	if err := fs.Parse(o.args); err != nil {
		return nil, errors.Wrap(errors.ErrBindFlags, err)
	}

	v := viper.New()

	flagKeys := map[string]string{
		"interval":     "interval",
		"count":        "count",
		"stations":     "stations",
		"station_id":   "station-id",
		"request_only": "request-only",
		"latest":       "latest",
		"refresh":      "refresh",
		"history":      "history",
		"hours":        "hours",
		"no_plot":      "no-plot",
		"journal":      "journal",
		"journal_db":   "journal-db",
		"status":       "status",
		"status_addr":  "status-addr",
		"debug":        "debug",
		"verbose":      "verbose",
	}
	for key, name := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, errors.Wrap(errors.ErrBindFlags, err)
		}
	}

	v.SetDefault("channel_id", "")
	v.SetDefault("write_api_key", "")
	v.SetDefault("read_api_key", "")
	v.SetDefault("username", "")
	v.SetDefault("mqtt_api_key", "")
	v.SetDefault("broker", defaultBroker)
	v.SetDefault("port", defaultPort)
	v.SetDefault("api_base_url", defaultBaseURL)

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	configFile := o.configFile
	if configFile == "" {
		configFile, _ = fs.GetString("config")
	}
	if configFile == "" {
		configFile = os.Getenv(configPathEnv)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(errors.ErrReadConfig, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(errors.ErrReadConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Mode returns the action the configuration selects.
func (c *Config) Mode() Mode {
	switch {
	case c.Latest:
		return ModeLatest
	case c.History != "":
		return ModeHistory
	default:
		return ModeStation
	}
}

// Validate checks ranges and the credentials the selected mode needs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrInvalidConfig, err)
	}

	if c.Latest && c.History != "" {
		return errors.WithData(errors.ErrInvalidConfig, "latest and history are mutually exclusive")
	}
	if c.Stations > 1 && c.StationID != "" {
		return errors.WithData(errors.ErrInvalidConfig, "station_id cannot be combined with multiple stations")
	}

	switch c.Mode() {
	case ModeLatest, ModeHistory:
		if c.ChannelID == "" || c.ReadAPIKey == "" {
			return errors.WithData(errors.ErrMissingCredentials, "channel_id and read_api_key are required to read the feed")
		}
	default:
		if c.ChannelID == "" || c.WriteAPIKey == "" {
			return errors.WithData(errors.ErrMissingCredentials, "channel_id and write_api_key are required to publish")
		}
		if !c.RequestOnly && (c.Username == "" || c.MQTTAPIKey == "") {
			return errors.WithData(errors.ErrMissingCredentials, "username and mqtt_api_key are required unless request_only is set")
		}
	}

	if c.Mode() == ModeHistory {
		if _, err := telemetry.ChannelByKey(c.History); err != nil {
			return err
		}
	}

	return nil
}

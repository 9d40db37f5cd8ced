package config

// Mode selects what the process does after configuration is loaded.
type Mode string

const (
	// ModeStation runs one or more publishing stations.
	ModeStation Mode = "station"
	// ModeLatest renders the channel's most recent entry.
	ModeLatest Mode = "latest"
	// ModeHistory renders one channel's readings over a window.
	ModeHistory Mode = "history"
)

// String implements the Stringer interface
func (m Mode) String() string {
	return string(m)
}

// Option defines a configuration option that can be passed to Load
type Option func(*options)

// options holds internal configuration options
type options struct {
	configFile string
	args       []string
}

// WithConfigFile specifies an explicit configuration file path
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithArgs overrides the command line arguments to parse.
// Defaults to os.Args[1:]
func WithArgs(args []string) Option {
	return func(o *options) {
		o.args = args
	}
}

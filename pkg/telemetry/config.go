package telemetry

// Config contains the telemetry configuration for the planner.
type Config struct {
	// ServiceName identifies the service in logs and metrics.
	ServiceName string

	// Logging contains logging configuration.
	Logging LoggingConfig

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level sets the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format specifies the log format (console, json).
	Format string

	// Output specifies where logs are written (stdout, stderr, file path).
	Output string

	// EnableCaller adds file:line caller information to logs.
	EnableCaller bool
}

// MetricsConfig configures Prometheus metrics collection.
type MetricsConfig struct {
	// Enabled turns metrics collection on.
	Enabled bool

	// Namespace is the metric name prefix.
	Namespace string

	// ListenAddress is the address for the metrics HTTP endpoint.
	ListenAddress string

	// Path is the HTTP path for the metrics endpoint.
	Path string
}

// DefaultConfig returns a configuration suitable for CLI use.
func DefaultConfig() Config {
	return Config{
		ServiceName: "blockplan",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Namespace:     "blockplan",
			ListenAddress: ":9464",
			Path:          "/metrics",
		},
	}
}

package metrics

// Default port for metrics server if none is specified.
const DefaultMetricsAddress = ":9090"

// Config defines the configuration for the Prometheus metrics server.
type Config struct {
	// Address is the network address where the metrics HTTP server listens.
	// Default: ":9090"
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors controls whether the built-in Go runtime
	// and process metrics are automatically registered.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// ServiceName identifies the service exposing metrics. Added as the
	// "service" label on every metric.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}

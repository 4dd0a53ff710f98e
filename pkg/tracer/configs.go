package tracer

type Config struct {
	// ServiceName appears as the otel service.name resource attribute.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv tags spans with the deployment environment (e.g. "production").
	AppEnv string `yaml:"app_env" envconfig:"TRACER_APP_ENV"`

	// EnableExport turns on the OTLP HTTP exporter. Disabled by default so
	// local runs don't need a collector.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}

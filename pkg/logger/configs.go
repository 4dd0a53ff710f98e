package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

type Config struct {
	// Level is one of debug, info, warning or error. Unknown values fall
	// back to info.
	Level string `yaml:"level" envconfig:"LOG_LEVEL"`

	// ServiceName is attached to every log line.
	ServiceName string `yaml:"service_name" envconfig:"LOG_SERVICE_NAME"`
}

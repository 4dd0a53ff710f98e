package rabbit

type Config struct {
	Connection Connection `yaml:"connection"`
	Channel    Channel    `yaml:"channel"`
	DeadLetter DeadLetter `yaml:"dead_letter"`
}

type Connection struct {
	Host         string `yaml:"host" envconfig:"RABBIT_HOST"`
	Port         uint   `yaml:"port" envconfig:"RABBIT_PORT"`
	User         string `yaml:"user" envconfig:"RABBIT_USER"`
	Password     string `yaml:"password" envconfig:"RABBIT_PASSWORD"`
	IsSSLEnabled bool   `yaml:"is_ssl_enabled" envconfig:"RABBIT_SSL"`
}

type Channel struct {
	ExchangeName  string `yaml:"exchange_name"`
	ExchangeType  string `yaml:"exchange_type"`
	RoutingKey    string `yaml:"routing_key"`
	QueueName     string `yaml:"queue_name"`
	PrefetchCount int    `yaml:"prefetch_count"`
	ContentType   string `yaml:"content_type"`
}

type DeadLetter struct {
	ExchangeName string `yaml:"exchange_name"`
	QueueName    string `yaml:"queue_name"`
	RoutingKey   string `yaml:"routing_key"`
}

package postgres

import "time"

type Config struct {
	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`
}

type Connection struct {
	Host     string `yaml:"host" envconfig:"POSTGRES_HOST"`
	Port     string `yaml:"port" envconfig:"POSTGRES_PORT"`
	User     string `yaml:"user" envconfig:"POSTGRES_USER"`
	Password string `yaml:"password" envconfig:"POSTGRES_PASSWORD"`
	DbName   string `yaml:"dbname" envconfig:"POSTGRES_DB"`
	SSLMode  string `yaml:"sslmode" envconfig:"POSTGRES_SSLMODE"`
}

type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

func (d ConnectionDetails) maxOpenConns() int {
	if d.MaxOpenConns <= 0 {
		return 50
	}
	return d.MaxOpenConns
}

func (d ConnectionDetails) maxIdleConns() int {
	if d.MaxIdleConns <= 0 {
		return 25
	}
	return d.MaxIdleConns
}

func (d ConnectionDetails) connMaxLifetime() time.Duration {
	if d.ConnMaxLifetime <= 0 {
		return time.Minute
	}
	return d.ConnMaxLifetime
}

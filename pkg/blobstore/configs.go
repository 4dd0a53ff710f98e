package blobstore

type Config struct {
	// Enabled turns raw page archiving on. Off by default.
	Enabled bool `yaml:"enabled" envconfig:"BLOBSTORE_ENABLED"`

	Endpoint  string `yaml:"endpoint" envconfig:"BLOBSTORE_ENDPOINT"`
	AccessKey string `yaml:"access_key" envconfig:"BLOBSTORE_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"BLOBSTORE_SECRET_KEY"`
	Bucket    string `yaml:"bucket" envconfig:"BLOBSTORE_BUCKET"`
	UseSSL    bool   `yaml:"use_ssl" envconfig:"BLOBSTORE_USE_SSL"`
}

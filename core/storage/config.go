package storage

// Config holds the object storage connection settings.
type Config struct {
	// Endpoint is host:port of the S3 compatible service. A scheme is stripped.
	Endpoint  string `mapstructure:"endpoint" default:"localhost:9000"`
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	UseSSL    bool   `mapstructure:"use_ssl" default:"false"`
	// Bucket receives uploaded reports when a location names no bucket.
	Bucket string `mapstructure:"bucket" default:"datadiff"`
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds bounds connection setup and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

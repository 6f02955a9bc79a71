package database

// Config holds configuration for the index database connection.
type Config struct {
	// DSN selects the engine, see ParseDSN.
	DSN string `mapstructure:"dsn" default:""`
	// TimeoutSeconds bounds the initial ping and the MySQL network timeouts.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxOpenConns caps the connection pool.
	MaxOpenConns int `mapstructure:"max_open_conns" default:"10"`
}

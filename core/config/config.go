package config

import (
	"fmt"
	"reflect"
	"strings"

	"datadiff/core/database"
	"datadiff/core/logger"
	"datadiff/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Log      logger.Config   `mapstructure:"log"`
	Database database.Config `mapstructure:"database"`
	Compare  CompareConfig   `mapstructure:"compare"`
	Storage  storage.Config  `mapstructure:"storage"`
	Report   ReportConfig    `mapstructure:"report"`
}

// CompareConfig holds the defaults of the compare command.
type CompareConfig struct {
	// Side is the store treated as the source of truth, "A" or "B".
	Side string `mapstructure:"side" default:"A"`
	// Limit caps the rows printed per change kind. Zero prints all.
	Limit int `mapstructure:"limit" default:"0"`
	// Format is the snapshot format used when it cannot be told from the
	// file name.
	Format string `mapstructure:"format" default:""`
}

// ReportConfig controls where reports go.
type ReportConfig struct {
	// Prefix is the object key prefix for uploaded reports.
	Prefix string `mapstructure:"prefix" default:"reports/"`
}

// LoadConfig loads configuration from environment variables and the .env
// file in path.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// A missing .env file is fine.
	_ = godotenv.Overload(envPath)

	v := viper.New()

	bindValues(v, Config{}, "")

	// DATABASE_DSN -> database.dsn
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the values viper cannot type check.
func (c *Config) Validate() error {
	side := strings.ToUpper(strings.TrimSpace(c.Compare.Side))
	if side != "A" && side != "B" {
		return fmt.Errorf("compare.side must be A or B, got %q", c.Compare.Side)
	}
	c.Compare.Side = side
	if c.Compare.Limit < 0 {
		return fmt.Errorf("compare.limit must not be negative, got %d", c.Compare.Limit)
	}
	if _, err := database.ParseDSN(c.Database.DSN); err != nil {
		return fmt.Errorf("database.dsn: %w", err)
	}
	return nil
}

// bindValues registers every mapstructure key of iface with its `default`
// tag so AutomaticEnv can resolve it.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set the default, even when empty, to register the key.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}

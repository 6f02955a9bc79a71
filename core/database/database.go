package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoDatabase is returned by Connect for DSNs that select the in-process index.
var ErrNoDatabase = errors.New("dsn does not select a database")

// Connect opens the database selected by cfg.DSN and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*gorm.DB, error) {
	target, err := ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	return Open(ctx, target, cfg)
}

// Open connects to an already parsed target.
func Open(ctx context.Context, target Target, cfg Config) (*gorm.DB, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	var dialector gorm.Dialector
	switch target.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(target.Source)
	case DriverMySQL:
		dialector = mysql.Open(withMySQLDefaults(target.Source, timeout))
	default:
		return nil, ErrNoDatabase
	}

	// Suppress GORM logging, errors are returned to the caller
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	if target.InMemory {
		// The shared in-memory database lives as long as one connection does.
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close releases the connection pool behind db.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// withMySQLDefaults appends the parameters the index relies on unless the
// caller already set them.
func withMySQLDefaults(dsn string, timeout int) string {
	params := []struct{ key, value string }{
		{"charset", "utf8mb4"},
		{"parseTime", "True"},
		{"timeout", fmt.Sprintf("%ds", timeout)},
		{"readTimeout", fmt.Sprintf("%ds", timeout)},
		{"writeTimeout", fmt.Sprintf("%ds", timeout)},
	}
	for _, p := range params {
		if containsParam(dsn, p.key) {
			continue
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + p.key + "=" + p.value
	}
	return dsn
}

func containsParam(dsn, key string) bool {
	return strings.Contains(dsn, "?"+key+"=") || strings.Contains(dsn, "&"+key+"=")
}

package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Driver names the engine selected by a DSN.
type Driver string

const (
	DriverMemory Driver = "memory"
	DriverSQLite Driver = "sqlite"
	DriverMySQL  Driver = "mysql"
)

// Target is a parsed DSN.
type Target struct {
	Driver Driver
	// Source is the driver specific connection string.
	Source string
	// InMemory is set for "sqlite::memory:".
	InMemory bool
}

// ParseDSN splits a DSN into its driver and driver specific source.
func ParseDSN(dsn string) (Target, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || dsn == "memory:" {
		return Target{Driver: DriverMemory}, nil
	}

	scheme, rest, ok := strings.Cut(dsn, ":")
	if !ok {
		return Target{}, fmt.Errorf("invalid dsn %q: missing driver prefix", dsn)
	}

	switch Driver(strings.ToLower(scheme)) {
	case DriverSQLite:
		if rest == "" {
			return Target{}, fmt.Errorf("invalid dsn %q: missing sqlite path", dsn)
		}
		if rest == ":memory:" {
			// A named shared-cache database is visible to every pooled
			// connection, so a cursor can stay open while other queries run.
			name := "datadiff-" + uuid.NewString()
			return Target{
				Driver:   DriverSQLite,
				Source:   "file:" + name + "?mode=memory&cache=shared",
				InMemory: true,
			}, nil
		}
		return Target{Driver: DriverSQLite, Source: rest}, nil
	case DriverMySQL:
		if rest == "" {
			return Target{}, fmt.Errorf("invalid dsn %q: missing mysql source", dsn)
		}
		return Target{Driver: DriverMySQL, Source: rest}, nil
	default:
		return Target{}, fmt.Errorf("invalid dsn %q: unsupported driver %q", dsn, scheme)
	}
}

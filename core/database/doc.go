// Package database opens the SQL engines that can back a keyed index.
//
// A DSN selects the engine:
//
//	""  or "memory:"      in-process hash index, no database
//	"sqlite::memory:"     private in-memory SQLite database
//	"sqlite:<path>"       SQLite database file
//	"mysql:<driver dsn>"  MySQL, go-sql-driver DSN syntax
//
// # Schema Inspection
//
// GetTableColumns reports the columns of a table for both dialects. It is
// used to verify that a freshly migrated index table has the columns the
// index relies on.
//
// # Usage
//
//	target, err := database.ParseDSN("sqlite:/tmp/diff.db")
//	db, err := database.Connect(ctx, database.Config{DSN: "sqlite:/tmp/diff.db"})
//	columns, err := database.GetTableColumns(db, "data_store")
package database

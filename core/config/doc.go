// Package config loads datadiff settings from the environment.
//
// A .env file in the given directory is read first, then every setting can be
// overridden by an environment variable named SECTION_KEY, for example
// DATABASE_DSN or STORAGE_ENDPOINT. Defaults come from the `default` struct
// tags of each section.
//
// # Configuration Structure
//
//   - Log: logging level and format
//   - Database: index engine DSN and pool settings
//   - Compare: which store is the source of truth and how many rows to print
//   - Storage: S3/MinIO credentials for s3:// snapshots and report upload
//   - Report: where reports are written
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Database.DSN)
package config

// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports development and
// production setups. Levels are debug, info, warn and error; encoding is
// json or console.
//
// # Store Awareness
//
// WithStore attaches the store label ("A" or "B") to every entry, so the
// logs of both sides of a diff can be told apart.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "console"})
//	log.Info("Compare started")
//
//	l := logger.WithStore(log, "A")
//	l.Debug("Duplicate key merged", zap.String("key", key))
package logger

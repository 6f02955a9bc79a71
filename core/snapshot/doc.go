// Package snapshot reads rows for a DiffStore from exported files.
//
// A snapshot is a JSON array of objects, newline delimited JSON or CSV with a
// header row. Field order of the input is kept. CSV cells stay strings; the
// schema converters take care of typing. Snapshots are read from the local
// file system or from object storage (s3://bucket/key). A location ending in a
// slash reads every object below that prefix in key order.
package snapshot

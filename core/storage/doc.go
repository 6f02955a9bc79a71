// Package storage wraps the MinIO client for the object-storage side of
// datadiff: reading snapshot objects and uploading reports.
//
// The Client interface covers only the calls datadiff makes, so tests can
// substitute core/storage/mocks. Locations are written as s3://bucket/key;
// ParseLocation splits them and the helpers in this package resolve prefixes,
// create buckets on demand and upload byte payloads.
package storage

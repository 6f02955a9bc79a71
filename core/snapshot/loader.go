package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"

	"datadiff/core/logger"
	"datadiff/core/record"
	"datadiff/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// ErrNoStorage is returned for s3:// locations when the loader has no
// object storage client.
var ErrNoStorage = errors.New("object storage is not configured")

// Loader reads snapshots from local files and object storage.
type Loader struct {
	client storage.Client
	log    *zap.Logger
}

// NewLoader returns a loader. client may be nil when only local files are
// read.
func NewLoader(client storage.Client, log *zap.Logger) *Loader {
	return &Loader{client: client, log: logger.OrNop(log)}
}

// Load decodes every row found at location and passes it to fn.
func (l *Loader) Load(ctx context.Context, location string, format Format, fn RowFunc) (Stats, error) {
	guarded := func(row record.Data) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(row)
	}

	var (
		stats Stats
		err   error
	)
	if storage.IsLocation(location) {
		stats, err = l.loadObjects(ctx, location, format, guarded)
	} else {
		stats, err = l.loadFile(location, format, guarded)
	}
	if err != nil {
		return stats, err
	}

	fields := []zap.Field{zap.String("location", location), zap.Int("rows", stats.Rows)}
	if stats.Dropped > 0 {
		l.log.Warn("Snapshot lines dropped", append(fields, zap.Int("dropped", stats.Dropped))...)
	} else {
		l.log.Debug("Snapshot loaded", fields...)
	}
	return stats, nil
}

func (l *Loader) loadFile(name string, format Format, fn RowFunc) (Stats, error) {
	f, err := format.resolve(name)
	if err != nil {
		return Stats{}, err
	}
	file, err := os.Open(name)
	if err != nil {
		return Stats{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer file.Close()

	stats, err := Decode(file, f, fn)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", name, err)
	}
	return stats, nil
}

func (l *Loader) loadObjects(ctx context.Context, location string, format Format, fn RowFunc) (Stats, error) {
	if l.client == nil {
		return Stats{}, fmt.Errorf("%w: cannot read %s", ErrNoStorage, location)
	}
	loc, err := storage.ParseLocation(location)
	if err != nil {
		return Stats{}, err
	}

	keys := []string{loc.Key}
	if loc.IsPrefix() {
		keys, err = storage.ListKeys(ctx, l.client, loc.Bucket, loc.Key)
		if err != nil {
			return Stats{}, err
		}
		l.log.Debug("Snapshot objects listed", zap.String("location", location), zap.Int("count", len(keys)))
	}

	var total Stats
	for _, key := range keys {
		stats, err := l.loadObject(ctx, storage.Location{Bucket: loc.Bucket, Key: key}, format, fn)
		total.add(stats)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (l *Loader) loadObject(ctx context.Context, loc storage.Location, format Format, fn RowFunc) (Stats, error) {
	f, err := format.resolve(loc.Key)
	if err != nil {
		return Stats{}, err
	}
	obj, err := l.client.GetObject(ctx, loc.Bucket, loc.Key, minio.GetObjectOptions{})
	if err != nil {
		return Stats{}, fmt.Errorf("get %s: %w", loc, err)
	}
	defer obj.Close()

	stats, err := Decode(obj, f, fn)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", loc, err)
	}
	return stats, nil
}

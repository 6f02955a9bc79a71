package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Scheme prefixes object storage locations.
const Scheme = "s3://"

// ErrInvalidLocation is returned for s3:// locations without a bucket.
var ErrInvalidLocation = errors.New("invalid object location")

// Location addresses an object, or every object below a prefix when Key ends
// with a slash or is empty.
type Location struct {
	Bucket string
	Key    string
}

// IsLocation reports whether s uses the s3:// scheme.
func IsLocation(s string) bool {
	return strings.HasPrefix(s, Scheme)
}

// ParseLocation splits s3://bucket/key.
func ParseLocation(s string) (Location, error) {
	if !IsLocation(s) {
		return Location{}, fmt.Errorf("%w: %q lacks the %s scheme", ErrInvalidLocation, s, Scheme)
	}
	bucket, key, _ := strings.Cut(strings.TrimPrefix(s, Scheme), "/")
	if bucket == "" {
		return Location{}, fmt.Errorf("%w: %q names no bucket", ErrInvalidLocation, s)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// IsPrefix reports whether the location names a folder rather than an object.
func (l Location) IsPrefix() bool {
	return l.Key == "" || strings.HasSuffix(l.Key, "/")
}

func (l Location) String() string {
	return Scheme + l.Bucket + "/" + l.Key
}

// ListKeys returns the object keys below prefix in lexical order. Folder
// markers are skipped.
func ListKeys(ctx context.Context, client Client, bucket, prefix string) ([]string, error) {
	var keys []string
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s%s/%s: %w", Scheme, bucket, prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		keys = append(keys, obj.Key)
	}
	slices.Sort(keys)
	return keys, nil
}

// EnsureBucket creates bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client Client, bucket, region string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	return nil
}

// Upload writes payload to loc.
func Upload(ctx context.Context, client Client, loc Location, payload []byte, contentType string) (minio.UploadInfo, error) {
	info, err := client.PutObject(ctx, loc.Bucket, loc.Key, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return minio.UploadInfo{}, fmt.Errorf("upload %s: %w", loc, err)
	}
	return info, nil
}

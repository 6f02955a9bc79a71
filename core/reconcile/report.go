package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"datadiff/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ContentType of serialized reports.
const ContentType = "application/json"

// Report wraps a plan with identifying metadata.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Plan
}

// NewReport stamps plan with a fresh ID and the current time.
func NewReport(plan *Plan) *Report {
	return &Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Plan:      *plan,
	}
}

// ObjectName is the default object name of the report below prefix.
func (r *Report) ObjectName(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix + "report-" + r.ID + ".json"
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteFile writes the report to name, replacing an existing file.
func (r *Report) WriteFile(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := r.WriteJSON(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Upload stores the report in object storage. A location naming a prefix
// receives the report under ObjectName. The bucket is created when missing.
func (r *Report) Upload(ctx context.Context, client storage.Client, loc storage.Location, region string) (minio.UploadInfo, error) {
	if loc.IsPrefix() {
		loc.Key = r.ObjectName(loc.Key)
	}
	if err := storage.EnsureBucket(ctx, client, loc.Bucket, region); err != nil {
		return minio.UploadInfo{}, err
	}

	var b strings.Builder
	if err := r.WriteJSON(&b); err != nil {
		return minio.UploadInfo{}, err
	}
	return storage.Upload(ctx, client, loc, []byte(b.String()), ContentType)
}

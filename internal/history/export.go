package history

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/oklog/ulid/v2"
)

// S3API is the subset of the S3 client the exporter calls.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Snapshot is the exported document.
type Snapshot struct {
	ExportedAt time.Time `json:"exportedAt"`
	Count      int       `json:"count"`
	Records    []Record  `json:"records"`
}

// Exporter uploads JSON snapshots of a store to S3.
type Exporter struct {
	client S3API
	bucket string
	prefix string
}

// NewExporter creates an exporter writing to s3://bucket/prefix<ULID>.json.
func NewExporter(client S3API, bucket, prefix string) *Exporter {
	return &Exporter{client: client, bucket: bucket, prefix: prefix}
}

// Export uploads the limit most recent records of store and returns the
// object key.
func (e *Exporter) Export(ctx context.Context, store Store, limit int) (string, error) {
	records, err := store.Recent(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}

	now := time.Now().UTC()
	data, err := json.MarshalIndent(Snapshot{ExportedAt: now, Count: len(records), Records: records}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	key := e.prefix + id.String() + ".json"

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &e.bucket,
		Key:           &key,
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return key, nil
}

package store

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
)

// MinioConfig locates the bucket that receives exported reports.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// Objects under ExpirePrefix are deleted by the bucket once ExpireAfter
	// has passed, rounded up to whole days. A zero ExpireAfter installs no rule.
	ExpirePrefix string
	ExpireAfter  time.Duration
}

// ExportArchive keeps copies of exported reports in a MinIO bucket.
type ExportArchive struct {
	client *minio.Client
	bucket string
}

// NewExportArchive connects to MinIO, creates the bucket when missing and
// installs the expiry rule for session exports.
func NewExportArchive(ctx context.Context, cfg MinioConfig) (*ExportArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	if rules := exportLifecycle(cfg.ExpirePrefix, cfg.ExpireAfter); rules != nil {
		if err := client.SetBucketLifecycle(ctx, cfg.Bucket, rules); err != nil {
			return nil, fmt.Errorf("minio bucket lifecycle: %w", err)
		}
	}

	return &ExportArchive{client: client, bucket: cfg.Bucket}, nil
}

// exportLifecycle expires objects under prefix after ttl rounded up to days,
// the granularity of S3 expiration rules.
func exportLifecycle(prefix string, ttl time.Duration) *lifecycle.Configuration {
	if ttl <= 0 {
		return nil
	}
	days := int(math.Ceil(ttl.Hours() / 24))

	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{{
		ID:         "expire-session-exports",
		Status:     "Enabled",
		RuleFilter: lifecycle.Filter{Prefix: prefix},
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(days)},
	}}
	return cfg
}

// Upload stores an exported document under key, replacing any previous copy.
func (a *ExportArchive) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:        contentType,
		ContentDisposition: "attachment",
	})
	if err != nil {
		return fmt.Errorf("minio upload %s: %w", key, err)
	}
	return nil
}

// Remove deletes an archived document. Missing objects are not an error.
func (a *ExportArchive) Remove(ctx context.Context, key string) error {
	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio remove %s: %w", key, err)
	}
	return nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Urmanga/file-scanner-gui/internal/config"
)

// ErrNotConfigured is returned when no endpoint or bucket is set
var ErrNotConfigured = errors.New("s3 storage is not configured")

// Uploader copies exported reports to an S3-compatible bucket
type Uploader struct {
	api    *minio.Client
	bucket string
	prefix string
}

// UploadResult describes a stored report
type UploadResult struct {
	Bucket string
	Key    string
	Size   int64
	ETag   string
}

// Configured reports whether cfg names an endpoint and a bucket
func Configured(cfg config.S3Config) bool {
	return cfg.Endpoint != "" && cfg.Bucket != ""
}

// New creates an uploader from the storage config
func New(cfg config.S3Config) (*Uploader, error) {
	if !Configured(cfg) {
		return nil, ErrNotConfigured
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	return &Uploader{
		api:    api,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// ObjectKey returns the object key for a local report file under prefix
func ObjectKey(prefix, localPath string) string {
	name := filepath.Base(localPath)
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// ContentType returns the MIME type stored with a report
func ContentType(localPath string) string {
	switch strings.ToLower(filepath.Ext(localPath)) {
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Upload stores the file at localPath and returns where it went
func (u *Uploader) Upload(ctx context.Context, localPath string) (*UploadResult, error) {
	key := ObjectKey(u.prefix, localPath)

	info, err := u.api.FPutObject(ctx, u.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: ContentType(localPath),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s to %s/%s: %w", localPath, u.bucket, key, err)
	}

	return &UploadResult{
		Bucket: u.bucket,
		Key:    key,
		Size:   info.Size,
		ETag:   info.ETag,
	}, nil
}

package clients

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
	URLTTL          time.Duration
}

type S3Client struct {
	raw    *minio.Client
	bucket string
	prefix string
	ttl    time.Duration
}

func NewS3Client(ctx context.Context, cfg S3Config) (*S3Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", cfg.Bucket, err)
		}
	}

	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &S3Client{
		raw:    client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		ttl:    ttl,
	}, nil
}

// ContentType maps collect attachment names to MIME types.
func ContentType(fileName string) string {
	switch path.Ext(fileName) {
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".txt", ".csv":
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Save uploads data under <prefix><date>/<uuid>_<fileName> and returns the object key.
func (c *S3Client) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	if c == nil || c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	key := fmt.Sprintf("%s%s/%s_%s", c.prefix, time.Now().Format("2006-01-02"), uuid.NewString(), path.Base(fileName))

	_, err := c.raw.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:        ContentType(fileName),
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", path.Base(fileName)),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q failed: %w", key, err)
	}

	return key, nil
}

// URL returns a presigned GET URL valid for the configured TTL.
func (c *S3Client) URL(ctx context.Context, key string) (string, error) {
	if c == nil || c.raw == nil {
		return "", fmt.Errorf("s3 client is nil")
	}

	u, err := c.raw.PresignedGetObject(ctx, c.bucket, key, c.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign get object %q failed: %w", key, err)
	}

	return u.String(), nil
}

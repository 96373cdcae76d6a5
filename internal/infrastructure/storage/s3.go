// Package storage sube exportaciones a almacenamiento compatible con S3 (MinIO).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jhoicas/Kenshin-api/pkg/config"
)

// S3Uploader sube archivos y devuelve una URL prefirmada.
type S3Uploader struct {
	raw    *minio.Client
	bucket string
	prefix string
	ttl    time.Duration
}

// NewS3Uploader crea el cliente (no hace llamadas de red).
func NewS3Uploader(cfg config.S3Config) (*S3Uploader, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("crear cliente s3: %w", err)
	}
	ttl := cfg.URLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &S3Uploader{raw: client, bucket: cfg.Bucket, prefix: cfg.Prefix, ttl: ttl}, nil
}

// Key clave del objeto para fileName.
func (u *S3Uploader) Key(fileName string) string {
	return path.Join(u.prefix, fileName)
}

// Upload sube data y devuelve la URL prefirmada de descarga.
func (u *S3Uploader) Upload(ctx context.Context, fileName, contentType string, data []byte) (string, error) {
	key := u.Key(fileName)
	_, err := u.raw.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}

	url, err := u.raw.PresignedGetObject(ctx, u.bucket, key, u.ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return url.String(), nil
}

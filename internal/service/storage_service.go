package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"wellbeing_backend/internal/config"
	"wellbeing_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider persists an export artifact and returns where it landed.
type StorageProvider interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// LocalStorage writes exports under a configured directory.
type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (s *LocalStorage) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	path := filepath.Join(s.basePath, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// MinioStorage uploads exports to an S3-compatible bucket.
type MinioStorage struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

func NewMinioStorage(cfg config.ExportConfig, logger *zap.Logger) (*MinioStorage, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds: credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to object storage: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check export bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create export bucket: %w", err)
		}
		logger.Info("created export bucket", zap.String("bucket", cfg.MinioBucket))
	}
	return &MinioStorage{client: client, bucket: cfg.MinioBucket, logger: logger}, nil
}

func (s *MinioStorage) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	s.logger.Info("export uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", name),
		zap.Int("bytes", len(data)))
	return fmt.Sprintf("%s/%s", s.bucket, name), nil
}

// NewStorageProvider selects the configured backend.
func NewStorageProvider(cfg config.ExportConfig, logger *zap.Logger) (StorageProvider, error) {
	switch cfg.Type {
	case util.ExportMinio:
		return NewMinioStorage(cfg, logger)
	case util.ExportLocal:
		return NewLocalStorage(cfg.LocalPath)
	}
	return nil, fmt.Errorf("unrecognized export storage type %q", cfg.Type)
}

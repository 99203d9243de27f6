package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"soundcatalog/config"
	"soundcatalog/logger"
	"soundcatalog/model"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioStore 封装了 MinIO 客户端，绑定到单个存储桶
type MinioStore struct {
	client     *minio.Client
	bucketName string
	publicBase *url.URL
}

// NewMinioStore 初始化 MinIO 客户端，存储桶不存在时创建
func NewMinioStore(ctx context.Context, cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	store := &MinioStore{client: client, bucketName: cfg.MinioBucket}
	if cfg.ObjectPublicURL != "" {
		if store.publicBase, err = url.Parse(cfg.ObjectPublicURL); err != nil {
			return nil, fmt.Errorf("invalid OBJECT_PUBLIC_URL: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 检查存储桶是否存在
	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, model.NewStoreError("BucketExists", cfg.MinioBucket, err)
	}
	if !exists {
		err = client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion})
		if err != nil {
			return nil, model.NewStoreError("MakeBucket", cfg.MinioBucket, err)
		}
		logger.Info("Created MinIO bucket", logger.String("bucket", cfg.MinioBucket))
	}

	logger.Info("MinIO client ready",
		logger.String("endpoint", cfg.MinioEndpoint),
		logger.String("bucket", cfg.MinioBucket))
	return store, nil
}

func (m *MinioStore) Bucket() string {
	return m.bucketName
}

func (m *MinioStore) PutObject(ctx context.Context, key, contentType string, data []byte) error {
	_, err := m.client.PutObject(ctx, m.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return model.NewStoreError("PutObject", m.bucketName, err)
}

// PublicURL 默认使用 path-style 地址：<endpoint>/<bucket>/<key>。
// 配置了 OBJECT_PUBLIC_URL 时，该地址直接对应桶根目录
func (m *MinioStore) PublicURL(key string) string {
	if m.publicBase != nil {
		return joinURL(m.publicBase, "", key)
	}
	return joinURL(m.client.EndpointURL(), m.bucketName, key)
}

func (m *MinioStore) DeleteObject(ctx context.Context, key string) error {
	err := m.client.RemoveObject(ctx, m.bucketName, key, minio.RemoveObjectOptions{})
	return model.NewStoreError("DeleteObject", m.bucketName, err)
}

func (m *MinioStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	objectCh := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, model.NewStoreError("ListObjects", m.bucketName, object.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          object.Key,
			Size:         object.Size,
			LastModified: object.LastModified,
			ContentType:  object.ContentType,
		})
	}
	return objects, nil
}

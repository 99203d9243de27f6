package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"soundcatalog/model"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const gcsPublicHost = "https://storage.googleapis.com"

// GCSStore implements ObjectStore for Google Cloud Storage
type GCSStore struct {
	client     *storage.Client
	bucket     string
	publicBase *url.URL
}

// NewGCSStore creates a GCS-backed store. An empty credentialsFile uses
// application default credentials; an empty publicBaseURL uses storage.googleapis.com.
func NewGCSStore(ctx context.Context, bucket, credentialsFile, publicBaseURL string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	base, err := gcsBase(bucket, publicBaseURL)
	if err != nil {
		client.Close()
		return nil, err
	}
	return &GCSStore{client: client, bucket: bucket, publicBase: base}, nil
}

// gcsBase 返回对应桶根目录的 URL
func gcsBase(bucket, publicBaseURL string) (*url.URL, error) {
	if publicBaseURL != "" {
		u, err := url.Parse(publicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid public base URL: %w", err)
		}
		return u, nil
	}
	u, _ := url.Parse(gcsPublicHost)
	return u.JoinPath(bucket), nil
}

func (s *GCSStore) Bucket() string {
	return s.bucket
}

func (s *GCSStore) PutObject(ctx context.Context, key, contentType string, data []byte) error {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return model.NewStoreError("PutObject", s.bucket, err)
	}
	// 数据在 Close 时才真正提交
	return model.NewStoreError("PutObject", s.bucket, wc.Close())
}

func (s *GCSStore) PublicURL(key string) string {
	return joinURL(s.publicBase, "", key)
}

func (s *GCSStore) DeleteObject(ctx context.Context, key string) error {
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil
	}
	return model.NewStoreError("DeleteObject", s.bucket, err)
}

func (s *GCSStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var objects []ObjectInfo
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, model.NewStoreError("ListObjects", s.bucket, err)
		}
		objects = append(objects, ObjectInfo{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
			ContentType:  attrs.ContentType,
		})
	}
	return objects, nil
}

// Close closes the GCS client
func (s *GCSStore) Close() error {
	return s.client.Close()
}

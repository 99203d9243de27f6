package storage

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// ObjectInfo 文件信息
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ContentType  string
}

// ObjectStore 保存音频文件的对象存储。所有失败都包装为 *model.StoreError
type ObjectStore interface {
	Bucket() string
	// PutObject uploads data under key, replacing any existing object.
	PutObject(ctx context.Context, key, contentType string, data []byte) error
	// PublicURL derives the object's public URL from bucket and key. It makes no remote call.
	PublicURL(key string) string
	// DeleteObject is a no-op when the object does not exist.
	DeleteObject(ctx context.Context, key string) error
	// ListObjects lists every object whose key starts with prefix.
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// joinURL 把 key 的每一段追加到 base 路径后，按需转义
func joinURL(base *url.URL, bucket, key string) string {
	elems := make([]string, 0, 8)
	if bucket != "" {
		elems = append(elems, url.PathEscape(bucket))
	}
	for _, seg := range strings.Split(key, "/") {
		elems = append(elems, url.PathEscape(seg))
	}
	return base.JoinPath(elems...).String()
}

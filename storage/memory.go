package storage

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"soundcatalog/model"
)

// ErrInjected is returned by MemoryStore operations armed with FailOn.
var ErrInjected = errors.New("injected object store failure")

type memoryObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryStore 是进程内的对象存储，用于测试和 OBJECTS_DRIVER=memory
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	base    *url.URL
	rooted  bool // base 直接对应桶根目录
	objects map[string]memoryObject
	fail    map[string]error
}

// NewMemoryStore creates an empty store whose public URLs live under baseURL.
func NewMemoryStore(bucket, baseURL string) *MemoryStore {
	base, err := url.Parse(baseURL)
	rooted := err == nil && baseURL != ""
	if !rooted {
		base = &url.URL{Scheme: "memory", Host: "objects"}
	}
	return &MemoryStore{
		bucket:  bucket,
		base:    base,
		rooted:  rooted,
		objects: make(map[string]memoryObject),
		fail:    make(map[string]error),
	}
}

// FailOn makes every subsequent call of op fail with err (ErrInjected when nil).
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	m.fail[op] = err
}

func (m *MemoryStore) failure(op string) error {
	if err, ok := m.fail[op]; ok {
		return model.NewStoreError(op, m.bucket, err)
	}
	return nil
}

// Object returns a copy of the stored bytes and content type.
func (m *MemoryStore) Object(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", false
	}
	return append([]byte(nil), obj.data...), obj.contentType, true
}

func (m *MemoryStore) Bucket() string {
	return m.bucket
}

func (m *MemoryStore) PutObject(ctx context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("PutObject"); err != nil {
		return err
	}
	m.objects[key] = memoryObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
		modified:    time.Now(),
	}
	return nil
}

func (m *MemoryStore) PublicURL(key string) string {
	if m.rooted {
		return joinURL(m.base, "", key)
	}
	return joinURL(m.base, m.bucket, key)
}

func (m *MemoryStore) DeleteObject(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("DeleteObject"); err != nil {
		return err
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("ListObjects"); err != nil {
		return nil, err
	}

	objects := make([]ObjectInfo, 0, len(m.objects))
	for key, obj := range m.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		objects = append(objects, ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.modified,
			ContentType:  obj.contentType,
		})
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}

package storage

import (
	"context"
	"testing"
	"time"

	"soundcatalog/model"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinioPublicURL(t *testing.T) {
	client, err := minio.New("minio.local:9000", &minio.Options{
		Creds: credentials.NewStaticV4("key", "secret", ""),
	})
	require.NoError(t, err)

	store := &MinioStore{client: client, bucketName: "tracks"}
	assert.Equal(t, "http://minio.local:9000/tracks/t1/a.mp3", store.PublicURL("t1/a.mp3"))
	assert.Equal(t, "http://minio.local:9000/tracks/t1/my%20song.mp3", store.PublicURL("t1/my song.mp3"))
	assert.Equal(t, store.PublicURL("t1/a.mp3"), store.PublicURL("t1/a.mp3"))
}

func TestGCSPublicURL(t *testing.T) {
	base, err := gcsBase("sound-bucket", "")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.googleapis.com/sound-bucket/t1/a.mp3", joinURL(base, "", "t1/a.mp3"))

	base, err = gcsBase("sound-bucket", "https://cdn.example.com/audio")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/audio/t1/a.mp3", joinURL(base, "", "t1/a.mp3"))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("tracks", "")

	require.NoError(t, store.PutObject(ctx, "t1/a.mp3", "audio/mpeg", []byte{0x01, 0x02}))
	require.NoError(t, store.PutObject(ctx, "t2/b.mp3", "audio/mpeg", []byte{0x03}))

	data, contentType, ok := store.Object("t1/a.mp3")
	require.True(t, ok)
	assert.Equal(t, []byte{0x01, 0x02}, data)
	assert.Equal(t, "audio/mpeg", contentType)
	assert.Equal(t, "memory://objects/tracks/t1/a.mp3", store.PublicURL("t1/a.mp3"))

	objects, err := store.ListObjects(ctx, "t1/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, int64(2), objects[0].Size)

	require.NoError(t, store.DeleteObject(ctx, "t1/a.mp3"))
	require.NoError(t, store.DeleteObject(ctx, "t1/a.mp3"))
	_, _, ok = store.Object("t1/a.mp3")
	assert.False(t, ok)

	store.FailOn("PutObject", nil)
	err = store.PutObject(ctx, "t3/c.mp3", "audio/mpeg", nil)
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.ErrorIs(t, err, ErrInjected)
}

func TestMemoryStoreRootedBase(t *testing.T) {
	store := NewMemoryStore("tracks", "https://cdn.example.com")
	assert.Equal(t, "https://cdn.example.com/t1/a.mp3", store.PublicURL("t1/a.mp3"))
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	stats := Summarize([]ObjectInfo{
		{Key: "t1/a.mp3", Size: 100, LastModified: now.Add(-time.Hour)},
		{Key: "t1/cover.png", Size: 10, LastModified: now, ContentType: "image/png"},
		{Key: "t2/b.flac", Size: 50},
	})
	assert.Equal(t, int64(3), stats.TotalObjects)
	assert.Equal(t, int64(160), stats.TotalSize)
	assert.True(t, stats.LastModified.Equal(now))
	assert.Equal(t, int64(150), stats.ByType["audio"])
	assert.Equal(t, int64(10), stats.ByType["image/png"])
}

func TestGroupByDir(t *testing.T) {
	dirs, groups := GroupByDir([]ObjectInfo{
		{Key: "t2/b.mp3"}, {Key: "t1/a.mp3"}, {Key: "t1/c.mp3"}, {Key: "loose.txt"},
	})
	assert.Equal(t, []string{"", "t1", "t2"}, dirs)
	assert.Len(t, groups["t1"], 2)
	assert.Len(t, groups[""], 1)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2*1024*1024))
}

package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"soundcatalog/db"
	"soundcatalog/logger"
	"soundcatalog/model"
	"soundcatalog/storage"

	"github.com/google/uuid"
)

// TrackRepository defines the interface for track data operations.
//
// Update, Delete and AttachBlob are read-then-write sequences without a
// version check: concurrent writers to the same track are last-writer-wins.
type TrackRepository interface {
	GetByID(ctx context.Context, id string) (*model.Track, error)
	GetAll(ctx context.Context) ([]*model.Track, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Track, error)
	Create(ctx context.Context, name string) (*model.Track, error)
	Update(ctx context.Context, id, name string) (*model.Track, error)
	Delete(ctx context.Context, id string) (*model.Track, error)

	// UploadFile runs PutBlob then AttachBlob.
	UploadFile(ctx context.Context, id, filename, contentType string, content io.Reader) (*model.Track, error)
	PutBlob(ctx context.Context, id, filename, contentType string, content io.Reader) (*PendingUpload, error)
	AttachBlob(ctx context.Context, pending *PendingUpload) (*model.Track, error)
}

// kvTrackRepository implements TrackRepository over a key-value store and an object store.
type kvTrackRepository struct {
	store   db.Store
	objects storage.ObjectStore
	table   string
}

// NewTrackRepository creates a track repository using table in store.
func NewTrackRepository(store db.Store, objects storage.ObjectStore, table string) TrackRepository {
	return &kvTrackRepository{store: store, objects: objects, table: table}
}

// GetByID 点查。记录不存在时返回 ErrNotFound，不会进入解码
func (r *kvTrackRepository) GetByID(ctx context.Context, id string) (*model.Track, error) {
	record, err := r.store.GetItem(ctx, r.table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("track %s: %w", id, model.ErrNotFound)
	}
	return model.DecodeTrack(record)
}

// GetAll 全表扫描，不保证顺序
func (r *kvTrackRepository) GetAll(ctx context.Context) ([]*model.Track, error) {
	records, err := r.store.Scan(ctx, r.table, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tracks: %w", err)
	}
	return model.DecodeTracks(records)
}

// FindByIDs 用一次 "uid IN (...)" 过滤扫描取回曲目。ids 为空时不访问存储
func (r *kvTrackRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Track, error) {
	if len(ids) == 0 {
		return []*model.Track{}, nil
	}

	filter := db.In(model.AttrUID, "trackId", ids)
	logger.Debug("Scanning tracks by id",
		logger.String("filter", filter.Expression()),
		logger.Int("params", len(ids)))

	records, err := r.store.Scan(ctx, r.table, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tracks by id: %w", err)
	}
	return model.DecodeTracks(records)
}

// Create 分配新的 UID 并无条件写入，不做读取
func (r *kvTrackRepository) Create(ctx context.Context, name string) (*model.Track, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: track name is required", model.ErrInvalidInput)
	}

	track := &model.Track{UID: uuid.NewString(), Name: name}
	if err := r.store.PutItem(ctx, r.table, model.EncodeTrack(track)); err != nil {
		return nil, fmt.Errorf("failed to create track: %w", err)
	}
	logger.Info("Track created", logger.String("uid", track.UID), logger.String("name", name))
	return track, nil
}

// Update 读-改-写：只覆盖名称，保留文件字段，写入后重新读取
func (r *kvTrackRepository) Update(ctx context.Context, id, name string) (*model.Track, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: track name is required", model.ErrInvalidInput)
	}

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := &model.Track{
		UID:     current.UID,
		Name:    name,
		FileKey: current.FileKey,
		FileURL: current.FileURL,
	}
	return r.putAndReload(ctx, updated)
}

// Delete 先读后删，返回删除前的快照。两次调用之间不具备原子性
func (r *kvTrackRepository) Delete(ctx context.Context, id string) (*model.Track, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.store.DeleteItem(ctx, r.table, current.UID); err != nil {
		return nil, fmt.Errorf("failed to delete track %s: %w", id, err)
	}
	logger.Info("Track deleted", logger.String("uid", current.UID), logger.String("fileKey", current.FileKey))
	return current, nil
}

func (r *kvTrackRepository) putAndReload(ctx context.Context, track *model.Track) (*model.Track, error) {
	if err := r.store.PutItem(ctx, r.table, model.EncodeTrack(track)); err != nil {
		return nil, fmt.Errorf("failed to update track %s: %w", track.UID, err)
	}
	return r.GetByID(ctx, track.UID)
}

// PendingUpload 表示 "文件已写入对象存储、记录尚未更新" 的中间状态
type PendingUpload struct {
	TrackID     string
	FileKey     string
	FileURL     string
	ContentType string
	Size        int
}

// OrphanedBlobError is returned when a blob was uploaded but attaching it to
// the track record failed. The blob stays in the object store.
type OrphanedBlobError struct {
	Pending *PendingUpload
	Err     error
}

func (e *OrphanedBlobError) Error() string {
	return fmt.Sprintf("blob %s uploaded but not attached to track %s: %v",
		e.Pending.FileKey, e.Pending.TrackID, e.Err)
}

func (e *OrphanedBlobError) Unwrap() error {
	return e.Err
}

// BlobKey 返回曲目文件在对象存储中的 key："<id>/<filename>"
func BlobKey(id, filename string) string {
	return id + "/" + filename
}

// PutBlob 是上传的第一步：把内容完整读入内存后写入对象存储，不检查曲目是否存在
func (r *kvTrackRepository) PutBlob(ctx context.Context, id, filename, contentType string, content io.Reader) (*PendingUpload, error) {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	// ".." 会在生成 URL 时被清理掉，必须在这里拒绝
	if id == "" || filename == "" || filename == "." || filename == ".." || filename == "/" {
		return nil, fmt.Errorf("%w: track id and filename are required", model.ErrInvalidInput)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, content); err != nil {
		return nil, fmt.Errorf("failed to read upload for track %s: %w", id, err)
	}

	key := BlobKey(id, filename)
	if err := r.objects.PutObject(ctx, key, contentType, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &PendingUpload{
		TrackID:     id,
		FileKey:     key,
		FileURL:     r.objects.PublicURL(key),
		ContentType: contentType,
		Size:        buf.Len(),
	}, nil
}

// AttachBlob 是上传的第二步：读-改-写曲目记录的文件字段，然后重新读取
func (r *kvTrackRepository) AttachBlob(ctx context.Context, pending *PendingUpload) (*model.Track, error) {
	current, err := r.GetByID(ctx, pending.TrackID)
	if err != nil {
		return nil, err
	}
	return r.putAndReload(ctx, current.WithFile(pending.FileKey, pending.FileURL))
}

// UploadFile 两步上传。第二步失败时文件成为孤儿，返回 *OrphanedBlobError，不做补偿
func (r *kvTrackRepository) UploadFile(ctx context.Context, id, filename, contentType string, content io.Reader) (*model.Track, error) {
	pending, err := r.PutBlob(ctx, id, filename, contentType, content)
	if err != nil {
		return nil, err
	}

	track, err := r.AttachBlob(ctx, pending)
	if err != nil {
		logger.Warn("Uploaded blob left without track reference",
			logger.String("trackId", pending.TrackID),
			logger.String("fileKey", pending.FileKey),
			logger.ErrorField(err))
		return nil, &OrphanedBlobError{Pending: pending, Err: err}
	}

	logger.Info("Track file uploaded",
		logger.String("uid", track.UID),
		logger.String("fileKey", track.FileKey),
		logger.Int("size", pending.Size))
	return track, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"soundcatalog/db"
	"soundcatalog/logger"
	"soundcatalog/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PlaylistRepository 播放列表数据访问接口
type PlaylistRepository interface {
	GetByID(ctx context.Context, id string) (*model.Playlist, error)
	GetAll(ctx context.Context) ([]*model.Playlist, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, name string, trackIDs []string) (*model.Playlist, error)
	Update(ctx context.Context, id, name string, trackIDs []string) (*model.Playlist, error)
	Delete(ctx context.Context, id string) (*model.Playlist, error)

	// 成员管理
	AddTrack(ctx context.Context, playlistID, trackID string) (*model.Playlist, error)
	GetTracksByPlaylistID(ctx context.Context, playlistID string) ([]*model.Track, error)
}

type kvPlaylistRepository struct {
	store  db.Store
	tracks TrackRepository
	table  string
}

// NewPlaylistRepository creates a playlist repository using table in store.
// tracks resolves membership and is consulted by AddTrack and GetTracksByPlaylistID only.
func NewPlaylistRepository(store db.Store, tracks TrackRepository, table string) PlaylistRepository {
	return &kvPlaylistRepository{store: store, tracks: tracks, table: table}
}

func (r *kvPlaylistRepository) GetByID(ctx context.Context, id string) (*model.Playlist, error) {
	record, err := r.store.GetItem(ctx, r.table, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", id, err)
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("playlist %s: %w", id, model.ErrNotFound)
	}
	return model.DecodePlaylist(record)
}

func (r *kvPlaylistRepository) GetAll(ctx context.Context) ([]*model.Playlist, error) {
	records, err := r.store.Scan(ctx, r.table, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlists: %w", err)
	}
	return model.DecodePlaylists(records)
}

// ExistsByID 只检查记录是否存在，不解码
func (r *kvPlaylistRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	record, err := r.store.GetItem(ctx, r.table, id)
	if err != nil {
		return false, fmt.Errorf("failed to check playlist %s: %w", id, err)
	}
	return len(record) > 0, nil
}

// Create 无条件写入，不校验 trackIDs 是否存在
func (r *kvPlaylistRepository) Create(ctx context.Context, name string, trackIDs []string) (*model.Playlist, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", model.ErrInvalidInput)
	}

	playlist := &model.Playlist{
		UID:      uuid.NewString(),
		Name:     name,
		TrackIDs: append([]string{}, trackIDs...),
	}
	if err := r.store.PutItem(ctx, r.table, model.EncodePlaylist(playlist)); err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}
	logger.Info("Playlist created",
		logger.String("uid", playlist.UID),
		logger.String("name", name),
		logger.Int("tracks", len(playlist.TrackIDs)))
	return playlist, nil
}

// Update 读-改-写，整体替换名称和曲目列表
func (r *kvPlaylistRepository) Update(ctx context.Context, id, name string, trackIDs []string) (*model.Playlist, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: playlist name is required", model.ErrInvalidInput)
	}
	return r.update(ctx, id, name, trackIDs)
}

func (r *kvPlaylistRepository) update(ctx context.Context, id, name string, trackIDs []string) (*model.Playlist, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := &model.Playlist{
		UID:      current.UID,
		Name:     name,
		TrackIDs: append([]string{}, trackIDs...),
	}
	if err := r.store.PutItem(ctx, r.table, model.EncodePlaylist(updated)); err != nil {
		return nil, fmt.Errorf("failed to update playlist %s: %w", id, err)
	}
	return updated, nil
}

func (r *kvPlaylistRepository) Delete(ctx context.Context, id string) (*model.Playlist, error) {
	// 有意只在删除时裁剪 id 两端空白，其余方法按原样查找
	current, err := r.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if err := r.store.DeleteItem(ctx, r.table, current.UID); err != nil {
		return nil, fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}
	logger.Info("Playlist deleted", logger.String("uid", current.UID))
	return current, nil
}

// AddTrack 并发读取播放列表和曲目，两者都存在时追加曲目（允许重复），再按 Update 的流程重新读取并写入
func (r *kvPlaylistRepository) AddTrack(ctx context.Context, playlistID, trackID string) (*model.Playlist, error) {
	var (
		playlist *model.Playlist
		track    *model.Track
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		playlist, err = r.GetByID(gctx, playlistID)
		return err
	})
	g.Go(func() error {
		var err error
		track, err = r.tracks.GetByID(gctx, trackID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	withTrack := playlist.WithTrack(track.UID)
	return r.update(ctx, playlist.UID, playlist.Name, withTrack.TrackIDs)
}

// GetTracksByPlaylistID 先读播放列表，再按曲目 ID 做一次过滤扫描。结果顺序由存储决定，重复 ID 只返回一次
func (r *kvPlaylistRepository) GetTracksByPlaylistID(ctx context.Context, playlistID string) ([]*model.Track, error) {
	playlist, err := r.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return r.tracks.FindByIDs(ctx, playlist.TrackIDs)
}

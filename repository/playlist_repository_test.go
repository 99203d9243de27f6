package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"soundcatalog/db"
	"soundcatalog/model"
	"soundcatalog/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistCreateThenGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.playlists.Create(ctx, "Mix", []string{"t1", "t2", "t1"})
	require.NoError(t, err)

	fetched, err := f.playlists.GetByID(ctx, created.UID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
	assert.Equal(t, []string{"t1", "t2", "t1"}, fetched.TrackIDs, "order and duplicates survive")
}

func TestPlaylistCreateEmptyList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.playlists.Create(ctx, "Empty", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{}, created.TrackIDs)

	fetched, err := f.playlists.GetByID(ctx, created.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{}, fetched.TrackIDs)
}

func TestPlaylistCreateCopiesInput(t *testing.T) {
	f := newFixture(t)
	ids := []string{"t1"}

	created, err := f.playlists.Create(context.Background(), "Mix", ids)
	require.NoError(t, err)
	ids[0] = "changed"
	assert.Equal(t, []string{"t1"}, created.TrackIDs)
}

func TestPlaylistCreateRejectsEmptyName(t *testing.T) {
	f := newFixture(t)
	_, err := f.playlists.Create(context.Background(), "", nil)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPlaylistExistsByID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ok, err := f.playlists.ExistsByID(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	created, err := f.playlists.Create(ctx, "Mix", nil)
	require.NoError(t, err)
	ok, err = f.playlists.ExistsByID(ctx, created.UID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlaylistExistsIgnoresMalformed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.PutItem(ctx, "playlists", model.Record{
		model.AttrUID: model.StringValue("p1"),
	}))

	ok, err := f.playlists.ExistsByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.playlists.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, model.ErrMalformedRecord)
}

func TestPlaylistGetAllAbortsOnMalformed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.playlists.Create(ctx, "Mix", nil)
	require.NoError(t, err)
	require.NoError(t, f.store.PutItem(ctx, "playlists", model.Record{
		model.AttrUID:      model.StringValue("bad"),
		model.AttrName:     model.StringValue("Bad"),
		model.AttrTrackIDs: model.StringValue("t1"),
	}))

	_, err = f.playlists.GetAll(ctx)
	assert.ErrorIs(t, err, model.ErrMalformedRecord)
}

func TestPlaylistUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.playlists.Create(ctx, "Mix", []string{"t1"})
	require.NoError(t, err)

	updated, err := f.playlists.Update(ctx, created.UID, "Mix 2", []string{"t2", "t3"})
	require.NoError(t, err)
	assert.Equal(t, created.UID, updated.UID)

	fetched, err := f.playlists.GetByID(ctx, created.UID)
	require.NoError(t, err)
	assert.Equal(t, "Mix 2", fetched.Name)
	assert.Equal(t, []string{"t2", "t3"}, fetched.TrackIDs)
}

func TestPlaylistUpdateMissingDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	_, err := f.playlists.Update(context.Background(), "nope", "Mix", nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 0, f.store.Calls("PutItem"))
}

func TestPlaylistDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.playlists.Create(ctx, "Mix", []string{"t1"})
	require.NoError(t, err)

	deleted, err := f.playlists.Delete(ctx, " "+created.UID+" ")
	require.NoError(t, err)
	assert.Equal(t, created, deleted)

	_, err = f.playlists.GetByID(ctx, created.UID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.playlists.Delete(ctx, created.UID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestPlaylistAddTrackScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	track, err := f.tracks.Create(ctx, "Song A")
	require.NoError(t, err)
	playlist, err := f.playlists.Create(ctx, "Mix", nil)
	require.NoError(t, err)

	once, err := f.playlists.AddTrack(ctx, playlist.UID, track.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{track.UID}, once.TrackIDs)

	twice, err := f.playlists.AddTrack(ctx, playlist.UID, track.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{track.UID, track.UID}, twice.TrackIDs)
	assert.Equal(t, "Mix", twice.Name)

	tracks, err := f.playlists.GetTracksByPlaylistID(ctx, playlist.UID)
	require.NoError(t, err)
	require.Len(t, tracks, 1, "duplicate ids resolve to one track")
	assert.Equal(t, track, tracks[0])
}

func TestPlaylistAddTrackMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	track, err := f.tracks.Create(ctx, "Song A")
	require.NoError(t, err)
	playlist, err := f.playlists.Create(ctx, "Mix", []string{"t0"})
	require.NoError(t, err)
	f.store.Reset()

	_, err = f.playlists.AddTrack(ctx, playlist.UID, "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
	_, err = f.playlists.AddTrack(ctx, "ghost", track.UID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, 0, f.store.Calls("PutItem"))

	fetched, err := f.playlists.GetByID(ctx, playlist.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{"t0"}, fetched.TrackIDs)
}

// rendezvousStore 让播放列表的首次读取等到曲目查找开始后才返回
type rendezvousStore struct {
	db.Store
	table        string
	trackStarted <-chan struct{}
	once         sync.Once
	started      chan struct{}
}

func (s *rendezvousStore) GetItem(ctx context.Context, table, uid string) (model.Record, error) {
	if table == s.table {
		s.once.Do(func() { close(s.started) })
		select {
		case <-s.trackStarted:
		case <-time.After(2 * time.Second):
			return nil, errors.New("track lookup never started")
		}
	}
	return s.Store.GetItem(ctx, table, uid)
}

// blockingTracks 在 GetByID 中等待 release 或 ctx 结束，并记录观察到的 ctx 错误
type blockingTracks struct {
	TrackRepository
	entered chan struct{}
	release <-chan struct{}
	ctxErr  chan error
}

func (b *blockingTracks) GetByID(ctx context.Context, id string) (*model.Track, error) {
	close(b.entered)
	select {
	case <-b.release:
		return b.TrackRepository.GetByID(ctx, id)
	case <-ctx.Done():
		b.ctxErr <- ctx.Err()
		return nil, ctx.Err()
	case <-time.After(2 * time.Second):
		return nil, errors.New("track lookup was never released")
	}
}

func TestPlaylistAddTrackLooksUpConcurrently(t *testing.T) {
	mem := db.NewMemoryStore()
	realTracks := NewTrackRepository(mem, storage.NewMemoryStore("tracks", ""), "tracks")
	ctx := context.Background()
	track, err := realTracks.Create(ctx, "Song A")
	require.NoError(t, err)
	seed := NewPlaylistRepository(mem, realTracks, "playlists")
	playlist, err := seed.Create(ctx, "Mix", nil)
	require.NoError(t, err)

	// 两次查找互相等待对方开始，顺序执行会超时失败
	tracks := &blockingTracks{TrackRepository: realTracks, entered: make(chan struct{}), ctxErr: make(chan error, 1)}
	store := &rendezvousStore{Store: mem, table: "playlists", trackStarted: tracks.entered, started: make(chan struct{})}
	tracks.release = store.started
	playlists := NewPlaylistRepository(store, tracks, "playlists")

	updated, err := playlists.AddTrack(ctx, playlist.UID, track.UID)
	require.NoError(t, err)
	assert.Equal(t, []string{track.UID}, updated.TrackIDs)
}

func TestPlaylistAddTrackCancelsPendingLookup(t *testing.T) {
	mem := db.NewMemoryStore()
	realTracks := NewTrackRepository(mem, storage.NewMemoryStore("tracks", ""), "tracks")
	tracks := &blockingTracks{
		TrackRepository: realTracks,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
		ctxErr:          make(chan error, 1),
	}
	playlists := NewPlaylistRepository(mem, tracks, "playlists")

	_, err := playlists.AddTrack(context.Background(), "ghost", "t1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.NotErrorIs(t, err, context.Canceled, "the first failure is reported")

	select {
	case ctxErr := <-tracks.ctxErr:
		assert.ErrorIs(t, ctxErr, context.Canceled)
	default:
		t.Fatal("track lookup did not observe cancellation")
	}
	assert.Equal(t, 0, mem.Calls("PutItem"))
}

func TestGetTracksByPlaylistID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.tracks.Create(ctx, "A")
	require.NoError(t, err)
	b, err := f.tracks.Create(ctx, "B")
	require.NoError(t, err)
	_, err = f.tracks.Create(ctx, "C")
	require.NoError(t, err)

	playlist, err := f.playlists.Create(ctx, "Mix", []string{a.UID, "dangling", b.UID})
	require.NoError(t, err)

	tracks, err := f.playlists.GetTracksByPlaylistID(ctx, playlist.UID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []*model.Track{a, b}, tracks)
}

func TestGetTracksByPlaylistIDEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	playlist, err := f.playlists.Create(ctx, "Empty", nil)
	require.NoError(t, err)

	tracks, err := f.playlists.GetTracksByPlaylistID(ctx, playlist.UID)
	require.NoError(t, err)
	assert.Empty(t, tracks)
	assert.Equal(t, 0, f.store.Calls("Scan"))

	_, err = f.playlists.GetTracksByPlaylistID(ctx, "ghost")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

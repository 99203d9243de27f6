package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		track Track
	}{
		{"without file", Track{UID: "t1", Name: "Song A"}},
		{"with file", Track{UID: "t2", Name: "Song B", FileKey: "t2/b.mp3", FileURL: "http://minio:9000/tracks/t2/b.mp3"}},
		{"empty name", Track{UID: "t3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := DecodeTrack(EncodeTrack(&tt.track))
			require.NoError(t, err)
			assert.Equal(t, tt.track, *decoded)
		})
	}
}

func TestDecodeTrackMissingField(t *testing.T) {
	for _, field := range []string{AttrUID, AttrName, AttrFileKey, AttrFileURL} {
		t.Run(field, func(t *testing.T) {
			r := EncodeTrack(&Track{UID: "t1", Name: "x"})
			delete(r, field)
			_, err := DecodeTrack(r)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestDecodeTrackWrongTag(t *testing.T) {
	r := EncodeTrack(&Track{UID: "t1", Name: "x"})
	r[AttrName] = StringListValue([]string{"x"})
	_, err := DecodeTrack(r)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestDecodeTrackHalfAttachedFile(t *testing.T) {
	r := EncodeTrack(&Track{UID: "t1", Name: "x"})
	r[AttrFileKey] = StringValue("t1/a.mp3")
	_, err := DecodeTrack(r)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestPlaylistRoundTrip(t *testing.T) {
	p := &Playlist{UID: "p1", Name: "Mix", TrackIDs: []string{"a", "b", "a"}}
	decoded, err := DecodePlaylist(EncodePlaylist(p))
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestPlaylistEmptyListAsymmetry(t *testing.T) {
	for _, ids := range [][]string{nil, {}} {
		p := &Playlist{UID: "p1", Name: "Mix", TrackIDs: ids}

		encoded := EncodePlaylist(p)
		_, exists := encoded[AttrTrackIDs]
		assert.False(t, exists, "empty track list must not be persisted")

		decoded, err := DecodePlaylist(encoded)
		require.NoError(t, err)
		assert.NotNil(t, decoded.TrackIDs)
		assert.Empty(t, decoded.TrackIDs)

		assert.Equal(t, encoded, EncodePlaylist(decoded))
	}
}

func TestDecodePlaylistRequiredFields(t *testing.T) {
	for _, field := range []string{AttrUID, AttrName} {
		r := EncodePlaylist(&Playlist{UID: "p1", Name: "Mix"})
		delete(r, field)
		_, err := DecodePlaylist(r)
		assert.ErrorIs(t, err, ErrMalformedRecord, field)
	}

	r := EncodePlaylist(&Playlist{UID: "p1", Name: "Mix"})
	r[AttrTrackIDs] = StringValue("a")
	_, err := DecodePlaylist(r)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestRecordJSONKeepsTags(t *testing.T) {
	r := EncodePlaylist(&Playlist{UID: "p1", Name: "", TrackIDs: []string{"x"}})
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(data, &back))
	p, err := DecodePlaylist(back)
	require.NoError(t, err)
	assert.Equal(t, "", p.Name)
	assert.Equal(t, []string{"x"}, p.TrackIDs)
}

func TestDecodeListsAbortOnFirstFailure(t *testing.T) {
	good := EncodeTrack(&Track{UID: "t1", Name: "a"})
	bad := Record{AttrUID: StringValue("t2")}
	_, err := DecodeTracks([]Record{good, bad})
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = DecodePlaylists([]Record{{AttrName: StringValue("x")}})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStoreError("GetItem", "tracks", cause)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, NewStoreError("GetItem", "tracks", nil))
}

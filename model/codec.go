package model

import "fmt"

// Attribute names used in persisted records.
const (
	AttrUID      = "uid"
	AttrName     = "name"
	AttrFileKey  = "fileKey"
	AttrFileURL  = "fileUrl"
	AttrTrackIDs = "trackIds"
)

func requireString(r Record, entity, name string) (string, error) {
	s, ok := r.String(name)
	if !ok {
		return "", fmt.Errorf("%w: %s record missing string attribute %q", ErrMalformedRecord, entity, name)
	}
	return s, nil
}

// DecodeTrack 将记录解码为 Track，四个字段都必须以字符串形式存在
func DecodeTrack(r Record) (*Track, error) {
	var (
		t   Track
		err error
	)
	if t.UID, err = requireString(r, "track", AttrUID); err != nil {
		return nil, err
	}
	if t.Name, err = requireString(r, "track", AttrName); err != nil {
		return nil, err
	}
	if t.FileKey, err = requireString(r, "track", AttrFileKey); err != nil {
		return nil, err
	}
	if t.FileURL, err = requireString(r, "track", AttrFileURL); err != nil {
		return nil, err
	}
	if (t.FileKey == "") != (t.FileURL == "") {
		return nil, fmt.Errorf("%w: track %s has fileKey and fileUrl out of step", ErrMalformedRecord, t.UID)
	}
	return &t, nil
}

// EncodeTrack 将 Track 编码为记录
func EncodeTrack(t *Track) Record {
	return Record{
		AttrUID:     StringValue(t.UID),
		AttrName:    StringValue(t.Name),
		AttrFileKey: StringValue(t.FileKey),
		AttrFileURL: StringValue(t.FileURL),
	}
}

// DecodeTracks decodes scan results; the first malformed record aborts.
func DecodeTracks(records []Record) ([]*Track, error) {
	tracks := make([]*Track, 0, len(records))
	for _, r := range records {
		t, err := DecodeTrack(r)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}

// DecodePlaylist 解码播放列表记录。trackIds 可缺省，缺省时为空列表
func DecodePlaylist(r Record) (*Playlist, error) {
	var (
		p   Playlist
		err error
	)
	if p.UID, err = requireString(r, "playlist", AttrUID); err != nil {
		return nil, err
	}
	if p.Name, err = requireString(r, "playlist", AttrName); err != nil {
		return nil, err
	}

	p.TrackIDs = []string{}
	if v, exists := r[AttrTrackIDs]; exists {
		if !v.IsStringList() {
			return nil, fmt.Errorf("%w: playlist %s has non-list %q", ErrMalformedRecord, p.UID, AttrTrackIDs)
		}
		p.TrackIDs = append(p.TrackIDs, v.L...)
	}
	return &p, nil
}

// EncodePlaylist 编码播放列表；空的 trackIds 不写入记录
func EncodePlaylist(p *Playlist) Record {
	r := Record{
		AttrUID:  StringValue(p.UID),
		AttrName: StringValue(p.Name),
	}
	if len(p.TrackIDs) > 0 {
		r[AttrTrackIDs] = StringListValue(p.TrackIDs)
	}
	return r
}

// DecodePlaylists decodes scan results; the first malformed record aborts.
func DecodePlaylists(records []Record) ([]*Playlist, error) {
	playlists := make([]*Playlist, 0, len(records))
	for _, r := range records {
		p, err := DecodePlaylist(r)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

package model

// Playlist 播放列表，TrackIDs 保持插入顺序，允许重复
type Playlist struct {
	UID      string   `json:"uid"`
	Name     string   `json:"name"`
	TrackIDs []string `json:"trackIds"`
}

// WithTrack 返回在末尾追加了 trackID 的副本，不修改原列表
func (p *Playlist) WithTrack(trackID string) *Playlist {
	ids := make([]string, 0, len(p.TrackIDs)+1)
	ids = append(ids, p.TrackIDs...)
	ids = append(ids, trackID)
	return &Playlist{
		UID:      p.UID,
		Name:     p.Name,
		TrackIDs: ids,
	}
}

package server

import (
	"net/http"
)

// PlaylistRequest 创建或整体更新播放列表的请求体
type PlaylistRequest struct {
	Name     string   `json:"name"`
	TrackIDs []string `json:"trackIds"`
}

// AddTrackRequest 向播放列表追加曲目的请求体
type AddTrackRequest struct {
	PlaylistID string `json:"playlistId"`
	TrackID    string `json:"trackId"`
}

func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.playlists.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, playlists)
}

func (h *APIHandler) GetPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.GetByID(r.Context(), pathUID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, playlist)
}

// PlaylistExistsHandler 只返回 true/false，不存在不算错误
func (h *APIHandler) PlaylistExistsHandler(w http.ResponseWriter, r *http.Request) {
	exists, err := h.playlists.ExistsByID(r.Context(), pathUID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, exists)
}

func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req PlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	playlist, err := h.playlists.Create(r.Context(), req.Name, req.TrackIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, playlist)
}

func (h *APIHandler) UpdatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req PlaylistRequest
	if !decodeBody(w, r, &req) {
		return
	}
	playlist, err := h.playlists.Update(r.Context(), pathUID(r), req.Name, req.TrackIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, playlist)
}

func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	playlist, err := h.playlists.Delete(r.Context(), pathUID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, playlist)
}

func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req AddTrackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PlaylistID == "" || req.TrackID == "" {
		writeMessage(w, http.StatusBadRequest, "playlistId and trackId are required")
		return
	}
	playlist, err := h.playlists.AddTrack(r.Context(), req.PlaylistID, req.TrackID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, playlist)
}

// GetPlaylistTracksHandler 返回播放列表中能解析到的曲目，悬空 ID 被忽略
func (h *APIHandler) GetPlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.playlists.GetTracksByPlaylistID(r.Context(), pathUID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, tracks)
}

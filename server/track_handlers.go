package server

import (
	"net/http"

	"soundcatalog/logger"
)

// multipart 表单在内存中保留的上限，超出部分由 net/http 落到临时文件
const maxUploadMemory = 32 << 20

// TrackRequest 创建或更新曲目的请求体
type TrackRequest struct {
	Name string `json:"name"`
}

// GetTracksHandler 返回全部曲目
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.tracks.GetAll(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, tracks)
}

func (h *APIHandler) GetTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.tracks.GetByID(r.Context(), pathUID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, track)
}

func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	track, err := h.tracks.Create(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, track)
}

func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	var req TrackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	track, err := h.tracks.Update(r.Context(), pathUID(r), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, track)
}

func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	track, err := h.tracks.Delete(r.Context(), pathUID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, track)
}

// UploadTrackFileHandler 接收 multipart 表单中的 file 字段并挂到曲目上
func (h *APIHandler) UploadTrackFileHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "file part is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	track, err := h.tracks.UploadFile(r.Context(), pathUID(r), header.Filename, contentType, file)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Info("Track file uploaded", requestFields(r,
		logger.String("uid", track.UID),
		logger.String("key", track.FileKey),
		logger.Int("size", int(header.Size)))...)
	writeOK(w, track)
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"soundcatalog/logger"
	"soundcatalog/model"
	"soundcatalog/repository"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Response 统一的响应结构
type Response struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
}

// APIHandler 处理所有API请求
type APIHandler struct {
	tracks    repository.TrackRepository
	playlists repository.PlaylistRepository
}

// NewAPIHandler 创建新的API处理器
func NewAPIHandler(tracks repository.TrackRepository, playlists repository.PlaylistRepository) *APIHandler {
	return &APIHandler{tracks: tracks, playlists: playlists}
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode response", logger.ErrorField(err))
	}
}

func writeOK(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{StatusCode: http.StatusOK, Message: "OK", Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{StatusCode: status, Message: message})
}

// statusFor 把仓储层错误映射为 HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// requestFields 请求日志的公共字段，经过鉴权的请求带上令牌主体
func requestFields(r *http.Request, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
	}
	if subject, ok := SubjectFromContext(r.Context()); ok {
		fields = append(fields, logger.String("subject", subject))
	}
	return append(fields, extra...)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", requestFields(r, logger.ErrorField(err))...)
	} else {
		logger.Debug("Request rejected", requestFields(r, logger.Int("status", status), logger.ErrorField(err))...)
	}
	writeMessage(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// EchoHandler 原样返回 message 参数，用于连通性检查
func (h *APIHandler) EchoHandler(w http.ResponseWriter, r *http.Request) {
	message, ok := r.URL.Query()["message"]
	if !ok {
		writeMessage(w, http.StatusBadRequest, "message parameter is required")
		return
	}
	writeOK(w, message[0])
}

func pathUID(r *http.Request) string {
	return mux.Vars(r)["uid"]
}

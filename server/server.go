package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soundcatalog/config"
	"soundcatalog/db"
	"soundcatalog/logger"
	"soundcatalog/repository"
	"soundcatalog/storage"

	"github.com/gorilla/mux"
)

// NewRouter 注册所有路由。写操作在配置了 jwtSecret 时需要 Bearer 令牌
func NewRouter(h *APIHandler, jwtSecret string) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	guard := func(next http.HandlerFunc) http.HandlerFunc {
		return AuthMiddleware(jwtSecret, next)
	}

	router.HandleFunc("/echo/ping-pong", h.EchoHandler).Methods(http.MethodGet)

	// 曲目
	router.HandleFunc("/tracks", h.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/tracks", guard(h.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/tracks/{uid}", h.GetTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/tracks/{uid}", guard(h.UpdateTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/tracks/{uid}", guard(h.DeleteTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/tracks/{uid}/upload", guard(h.UploadTrackFileHandler)).Methods(http.MethodPost)

	// 播放列表。/playlists/addTrack 必须先于 /playlists/{uid} 注册
	router.HandleFunc("/playlists/addTrack", guard(h.AddTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/playlists", h.GetPlaylistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/playlists", guard(h.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/playlists/{uid}", h.GetPlaylistHandler).Methods(http.MethodGet)
	router.HandleFunc("/playlists/{uid}", guard(h.UpdatePlaylistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/playlists/{uid}", guard(h.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/playlists/{uid}/exists", h.PlaylistExistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/playlists/{uid}/tracks", h.GetPlaylistTracksHandler).Methods(http.MethodGet)

	// CORS 包在路由外层，预检请求不经过路由匹配
	return corsMiddleware(router)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start 连接存储、组装仓储并启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出
func Start(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	objects, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := objects.(io.Closer); ok {
		defer closer.Close()
	}

	tracks := repository.NewTrackRepository(store, objects, cfg.TracksTable)
	playlists := repository.NewPlaylistRepository(store, tracks, cfg.PlaylistsTable)
	router := NewRouter(NewAPIHandler(tracks, playlists), cfg.JWTSecret)

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty, write endpoints are not protected")
	}

	return Serve(ctx, cfg.ListenAddr, router, cfg.ShutdownTimeout)
}

// Serve 在 ctx 结束前持续提供服务，然后在 shutdownTimeout 内关闭
func Serve(ctx context.Context, addr string, handler http.Handler, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

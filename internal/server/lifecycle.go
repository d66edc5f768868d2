package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
)

const monitorInterval = 30 * time.Second

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.config.Server.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.monitorStats()

	log.Info().Str("addr", s.config.Server.Addr()).Msg("🐺 狼人杀服务器启动")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 关闭服务器并停止所有房间定时器
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)

		if s.httpServer != nil {
			err = s.httpServer.Shutdown(ctx)
		}

		s.closeAllClients()
		s.roomManager.Close()

		if s.redis != nil {
			_ = s.redis.Close()
		}

		log.Info().Msg("服务器已关闭")
	})
	return err
}

// monitorStats 定期监控服务器状态
func (s *Server) monitorStats() {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.logStats()
		}
	}
}

// logStats 输出一次监控快照
func (s *Server) logStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	event := log.Info().
		Int("online", s.GetOnlineCount()).
		Int("rooms", s.roomManager.RoomCount()).
		Int("active_games", s.roomManager.GetActiveGamesCount()).
		Int("goroutines", runtime.NumGoroutine()).
		Int("conns", len(s.semaphore)).
		Int("max_conns", cap(s.semaphore)).
		Float64("heap_mb", float64(m.HeapAlloc)/1024/1024)

	if s.proc != nil {
		if cpu, err := s.proc.Percent(0); err == nil {
			event = event.Float64("cpu_percent", cpu)
		}
	}

	event.Msg("📊 [监控]")
}

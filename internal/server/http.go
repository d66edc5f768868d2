package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/werewolf/internal/protocol"
)

// newEngine 注册 HTTP 路由
func (s *Server) newEngine() *gin.Engine {
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/ws", func(c *gin.Context) {
		s.handleWebSocket(c.Writer, c.Request)
	})
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/api", cors.New(s.corsConfig()))
	api.GET("/rooms", s.handleListRooms)
	api.GET("/stats", s.handleStats)

	return r
}

// corsConfig 跨域配置与 WebSocket 来源白名单保持一致
func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type", "Origin"},
		MaxAge:       12 * time.Hour,
	}
	if s.originChecker.AllowAll() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.originChecker.Origins()
	}
	return cfg
}

// handleListRooms 公开房间列表
func (s *Server) handleListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, protocol.PublicRoomsPayload{Rooms: s.roomManager.PublicRooms()})
}

// handleStats 服务器概况，启用 Redis 时附带阵营胜场
func (s *Server) handleStats(c *gin.Context) {
	stats := gin.H{
		"online":       s.GetOnlineCount(),
		"rooms":        s.roomManager.RoomCount(),
		"active_games": s.roomManager.GetActiveGamesCount(),
	}

	if s.store != nil {
		wins, err := s.store.GetWins(c.Request.Context())
		if err != nil {
			log.Warn().Err(err).Msg("读取胜场统计失败")
		} else {
			stats["wins"] = wins
		}
	}

	c.JSON(http.StatusOK, stats)
}

// requestLogger 以 debug 级别记录 HTTP 请求
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http")
	}
}

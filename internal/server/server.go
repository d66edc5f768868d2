package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/palemoky/werewolf/internal/config"
	"github.com/palemoky/werewolf/internal/game/room"
	"github.com/palemoky/werewolf/internal/metrics"
	"github.com/palemoky/werewolf/internal/server/handler"
	"github.com/palemoky/werewolf/internal/server/storage"
	"github.com/palemoky/werewolf/internal/types"
)

// Server WebSocket 服务器
type Server struct {
	config *config.Config

	clients   map[string]types.ClientInterface
	clientsMu sync.RWMutex

	roomManager *room.RoomManager
	handler     *handler.Handler
	metrics     *metrics.Collector
	redis       *redis.Client
	store       *storage.RedisStore

	// 安全组件
	semaphore      chan struct{}
	originChecker  *OriginChecker
	connectLimiter *ConnectLimiter
	upgrader       websocket.Upgrader

	engine     *gin.Engine
	httpServer *http.Server
	proc       *process.Process

	stopOnce sync.Once
	done     chan struct{}
}

// Options NewServer 的可选依赖，零值使用默认实现
type Options struct {
	Clock types.Clock // 阶段定时器，测试中替换
}

// NewServer 创建服务器
func NewServer(cfg *config.Config, opts ...Options) (*Server, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[0]
	}

	s := &Server{
		config:         cfg,
		clients:        make(map[string]types.ClientInterface),
		metrics:        metrics.NewCollector(),
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		originChecker:  NewOriginChecker(cfg.Server.AllowedOrigins),
		connectLimiter: NewConnectLimiter(cfg.Security.ConnectLimit),
		done:           make(chan struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	var store room.Store
	if cfg.Redis.Enabled {
		rdb, err := connectRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.redis = rdb
		s.store = storage.NewRedisStore(rdb)
		store = s.store
	}

	s.roomManager = room.NewRoomManager(room.Options{
		Durations: room.Durations{
			Night:  cfg.Game.NightDurationTime(),
			Day:    cfg.Game.DayDurationTime(),
			Voting: cfg.Game.VotingDurationTime(),
		},
		Clock:       opt.Clock,
		Store:       store,
		Metrics:     s.metrics,
		DefaultName: cfg.Game.DefaultName,
	})
	s.handler = handler.NewHandler(s.roomManager)
	s.engine = s.newEngine()

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		s.proc = proc
	} else {
		log.Warn().Err(err).Msg("无法读取进程信息，监控将不包含 CPU")
	}

	return s, nil
}

// connectRedis 连接 Redis 并确认可用
func connectRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := storage.NewRedisStore(rdb).Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis 连接失败 (%s): %w", cfg.Addr, err)
	}

	log.Info().Str("addr", cfg.Addr).Msg("✅ Redis 已连接")
	return rdb, nil
}

// Handler 返回 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.engine
}

// RoomManager 返回房间管理器
func (s *Server) RoomManager() *room.RoomManager {
	return s.roomManager
}

// Metrics 返回指标收集器
func (s *Server) Metrics() *metrics.Collector {
	return s.metrics
}

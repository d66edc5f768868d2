package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/werewolf/internal/config"
	"github.com/palemoky/werewolf/internal/logger"
	"github.com/palemoky/werewolf/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("path", *configPath).Msg("配置文件不存在，使用默认配置")
		cfg, err = config.FromEnv()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("加载配置失败")
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatal().Err(err).Msg("初始化日志失败")
	}
	defer logger.Close()

	// 创建服务器
	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("创建服务器失败")
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-quit
		log.Info().Msg("正在关闭服务器...")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("关闭服务器出错")
		}
	}()

	// 启动服务器
	if err := srv.Start(); err != nil {
		log.Error().Err(err).Msg("服务器启动失败")
		logger.Close()
		os.Exit(1)
	}
	<-stopped
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// 环境变量前缀，例如 WEREWOLF_PORT、WEREWOLF_REDIS_ADDR
const envPrefix = "WEREWOLF_"

// 默认值
const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 1780
	defaultMaxConnections  = 10000
	defaultShutdownTimeout = 10
	defaultRedisAddr       = "localhost:6379"
	defaultNightDuration   = 60
	defaultDayDuration     = 60
	defaultVotingDuration  = 30
	defaultPlayerName      = "无名氏"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis" envPrefix:"REDIS_"`
	Game     GameConfig     `yaml:"game" envPrefix:"GAME_"`
	Security SecurityConfig `yaml:"security" envPrefix:"SECURITY_"`
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host            string   `yaml:"host" env:"HOST"`
	Port            int      `yaml:"port" env:"PORT"`
	MaxConnections  int      `yaml:"max_connections" env:"MAX_CONNECTIONS"`
	AllowedOrigins  []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout int      `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"` // 优雅关闭超时（秒）
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
}

// GameConfig 游戏配置，时长单位为秒
type GameConfig struct {
	NightDuration  int    `yaml:"night_duration" env:"NIGHT_DURATION"`
	DayDuration    int    `yaml:"day_duration" env:"DAY_DURATION"`
	VotingDuration int    `yaml:"voting_duration" env:"VOTING_DURATION"`
	DefaultName    string `yaml:"default_name" env:"DEFAULT_NAME"` // 未填写昵称时使用
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	MessageLimit RateLimitConfig `yaml:"message_limit" envPrefix:"MESSAGE_LIMIT_"` // 每个连接的消息速率
	ConnectLimit RateLimitConfig `yaml:"connect_limit" envPrefix:"CONNECT_LIMIT_"` // 每个 IP 的建连速率
}

// RateLimitConfig 令牌桶参数
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second" env:"PER_SECOND"`
	Burst     int     `yaml:"burst" env:"BURST"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug/info/warn/error
	Format string `yaml:"format" env:"FORMAT"` // console/json
	File   string `yaml:"file" env:"FILE"`     // 为空时只输出到终端
}

// NightDurationTime 返回夜晚时长
func (c *GameConfig) NightDurationTime() time.Duration {
	return time.Duration(c.NightDuration) * time.Second
}

// DayDurationTime 返回白天时长
func (c *GameConfig) DayDurationTime() time.Duration {
	return time.Duration(c.DayDuration) * time.Second
}

// VotingDurationTime 返回投票时长
func (c *GameConfig) VotingDurationTime() time.Duration {
	return time.Duration(c.VotingDuration) * time.Second
}

// ShutdownTimeoutDuration 返回优雅关闭超时
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load 加载配置文件：默认值 → YAML → 环境变量 → 校验
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv 在默认配置上应用环境变量，用于没有配置文件的场景
func FromEnv() (*Config, error) {
	cfg := Default()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port 无效: %d", c.Server.Port))
	}
	if c.Server.MaxConnections <= 0 {
		errs = append(errs, errors.New("server.max_connections 必须大于 0"))
	}
	if c.Game.NightDuration <= 0 || c.Game.DayDuration <= 0 || c.Game.VotingDuration <= 0 {
		errs = append(errs, errors.New("game 阶段时长必须大于 0"))
	}
	if c.Game.DayDuration <= c.Game.VotingDuration {
		errs = append(errs, fmt.Errorf("game.day_duration (%d) 必须大于 game.voting_duration (%d)",
			c.Game.DayDuration, c.Game.VotingDuration))
	}
	for name, limit := range map[string]RateLimitConfig{
		"security.message_limit": c.Security.MessageLimit,
		"security.connect_limit": c.Security.ConnectLimit,
	} {
		if limit.PerSecond <= 0 || limit.Burst <= 0 {
			errs = append(errs, fmt.Errorf("%s 必须大于 0", name))
		}
	}

	return errors.Join(errs...)
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            defaultHost,
			Port:            defaultPort,
			MaxConnections:  defaultMaxConnections,
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Redis: RedisConfig{
			Addr: defaultRedisAddr,
		},
		Game: GameConfig{
			NightDuration:  defaultNightDuration,
			DayDuration:    defaultDayDuration,
			VotingDuration: defaultVotingDuration,
			DefaultName:    defaultPlayerName,
		},
		Security: SecurityConfig{
			MessageLimit: RateLimitConfig{PerSecond: 10, Burst: 20},
			ConnectLimit: RateLimitConfig{PerSecond: 2, Burst: 10},
		},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}

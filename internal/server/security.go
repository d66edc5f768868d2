package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/palemoky/werewolf/internal/config"
)

// --- 建连速率限制 ---

const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = 5 * time.Minute
)

// ConnectLimiter 按 IP 的令牌桶建连限制
type ConnectLimiter struct {
	limiters map[string]*ipLimiter
	mu       sync.Mutex

	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewConnectLimiter 创建建连限制器
func NewConnectLimiter(cfg config.RateLimitConfig) *ConnectLimiter {
	return &ConnectLimiter{
		limiters:  make(map[string]*ipLimiter),
		limit:     rate.Limit(cfg.PerSecond),
		burst:     cfg.Burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow 检查该 IP 是否允许建立新连接
func (cl *ConnectLimiter) Allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	now := cl.now()
	cl.sweepLocked(now)

	entry, ok := cl.limiters[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// Len 当前跟踪的 IP 数
func (cl *ConnectLimiter) Len() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.limiters)
}

// sweepLocked 清理长时间未出现的 IP
func (cl *ConnectLimiter) sweepLocked(now time.Time) {
	if now.Sub(cl.lastSweep) < limiterSweepInterval {
		return
	}
	cl.lastSweep = now
	for ip, entry := range cl.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(cl.limiters, ip)
		}
	}
}

// --- 消息速率限制 ---

// maxRateStrikes 连续超速次数上限，超过后断开连接
const maxRateStrikes = 5

// MessageLimiter 单个连接的消息限速
type MessageLimiter struct {
	limiter *rate.Limiter
	strikes int
}

// NewMessageLimiter 创建消息限速器
func NewMessageLimiter(cfg config.RateLimitConfig) *MessageLimiter {
	return &MessageLimiter{limiter: rate.NewLimiter(rate.Limit(cfg.PerSecond), cfg.Burst)}
}

// Allow 检查是否允许处理下一条消息。
// 第二个返回值为 true 表示超速次数过多，应断开连接。
func (ml *MessageLimiter) Allow() (allowed bool, disconnect bool) {
	if ml.limiter.Allow() {
		ml.strikes = 0
		return true, false
	}
	ml.strikes++
	return false, ml.strikes > maxRateStrikes
}

// --- 来源验证 ---

// OriginChecker 来源验证器
type OriginChecker struct {
	allowedOrigins map[string]bool
	allowAll       bool
}

// NewOriginChecker 创建来源验证器
func NewOriginChecker(origins []string) *OriginChecker {
	oc := &OriginChecker{
		allowedOrigins: make(map[string]bool),
	}

	for _, origin := range origins {
		if origin == "*" {
			oc.allowAll = true
			return oc
		}
		oc.allowedOrigins[strings.ToLower(strings.TrimSpace(origin))] = true
	}

	return oc
}

// Check 检查来源是否允许
func (oc *OriginChecker) Check(r *http.Request) bool {
	if oc.allowAll {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		// 没有 Origin 头，可能是同源请求或本地客户端
		return true
	}

	return oc.allowedOrigins[strings.ToLower(origin)]
}

// AllowAll 是否允许任意来源
func (oc *OriginChecker) AllowAll() bool {
	return oc.allowAll
}

// Origins 返回允许的来源列表
func (oc *OriginChecker) Origins() []string {
	origins := make([]string, 0, len(oc.allowedOrigins))
	for origin := range oc.allowedOrigins {
		origins = append(origins, origin)
	}
	return origins
}

// --- 辅助函数 ---

// GetClientIP 获取客户端真实 IP
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// 取第一个 IP（最原始的客户端）
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

// handleWebSocket 处理 WebSocket 连接
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientIP := GetClientIP(r)

	// 来源验证
	if !s.originChecker.Check(r) {
		log.Warn().Str("origin", r.Header.Get("Origin")).Str("ip", clientIP).Msg("🚫 来源验证失败")
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	// 速率限制检查
	if !s.connectLimiter.Allow(clientIP) {
		log.Warn().Str("ip", clientIP).Msg("🚫 IP 建连过于频繁")
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	}

	// 连接数限制检查，断开时在 UnregisterClient 中释放
	select {
	case s.semaphore <- struct{}{}:
	default:
		log.Warn().Int("max", cap(s.semaphore)).Str("ip", clientIP).Msg("🚫 达到最大连接数限制")
		http.Error(w, "Server Full", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		<-s.semaphore
		log.Debug().Err(err).Str("ip", clientIP).Msg("WebSocket 升级失败")
		return
	}

	client := NewClient(s, conn)
	client.IP = clientIP
	s.RegisterClient(client.ID, client)

	client.SendMessage(codec.MustNewMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID: client.ID,
	}))

	log.Info().Str("player", client.ID).Str("ip", clientIP).Msg("✅ 客户端已连接")

	go client.ReadPump()
	go client.WritePump()
}

// GetOnlineCount 获取在线人数
func (s *Server) GetOnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// RegisterClient 注册客户端
func (s *Server) RegisterClient(id string, client types.ClientInterface) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, exists := s.clients[id]; !exists {
		s.metrics.ClientConnected()
	}
	s.clients[id] = client
}

// UnregisterClient 注销客户端并释放连接名额
func (s *Server) UnregisterClient(id string) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[id]; !ok {
		return
	}
	delete(s.clients, id)
	s.metrics.ClientDisconnected()

	select {
	case <-s.semaphore:
	default:
	}
	log.Info().Str("player", id).Msg("❌ 客户端已断开")
}

// closeAllClients 关闭所有客户端连接
func (s *Server) closeAllClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, client := range s.clients {
		client.Close()
	}
}

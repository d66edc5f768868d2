package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/werewolf/internal/logger"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	sendBufferSize = 256
)

// frame 待写出的一帧
type frame struct {
	kind int // websocket.TextMessage 或 websocket.BinaryMessage
	data []byte
}

// Client 代表一个 WebSocket 连接
type Client struct {
	ID string // 连接唯一 ID，同时作为玩家 ID
	IP string // 客户端 IP 地址

	server  *Server
	conn    *websocket.Conn
	send    chan frame
	limiter *MessageLimiter

	// 回复使用客户端最近一次发来的帧类型
	binary atomic.Bool

	mu     sync.RWMutex
	name   string
	roomID string
	closed bool
}

// NewClient 创建新客户端
func NewClient(s *Server, conn *websocket.Conn) *Client {
	return &Client{
		ID:      uuid.New().String(),
		server:  s,
		conn:    conn,
		send:    make(chan frame, sendBufferSize),
		limiter: NewMessageLimiter(s.config.Security.MessageLimit),
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.handleDisconnect()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("player", c.ID).Msg("读取错误")
			}
			return
		}
		c.binary.Store(kind == websocket.BinaryMessage)

		allowed, disconnect := c.limiter.Allow()
		if !allowed {
			if disconnect {
				log.Warn().Str("player", c.ID).Str("ip", c.IP).Msg("🚫 客户端因多次超速被断开连接")
				return
			}
			log.Debug().Str("player", c.ID).Str("ip", c.IP).Msg("⚠️ 客户端消息过于频繁")
			c.SendMessage(codec.NewErrorMessageWithText(protocol.ErrCodeRateLimit, "消息发送过于频繁"))
			continue
		}

		msg, err := decodeFrame(kind, data)
		if err != nil {
			log.Debug().Err(err).Str("player", c.ID).Msg("消息解析错误")
			c.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			continue
		}

		c.server.handler.Handle(c, msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(f.kind, f.data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端，不会阻塞调用方
func (c *Client) SendMessage(msg *protocol.Message) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}

	f, err := encodeFrame(msg, c.binary.Load())
	if err != nil {
		log.Error().Err(err).Str("type", string(msg.Type)).Msg("消息编码错误")
		return
	}

	select {
	case c.send <- f:
	default:
		// 发送缓冲区已满，关闭连接
		log.Warn().Str("player", c.ID).Msg("客户端发送缓冲区已满")
		go c.Close()
	}
}

// handleDisconnect 处理断开连接
func (c *Client) handleDisconnect() {
	c.server.roomManager.Leave(c)
	c.server.UnregisterClient(c.ID)
	c.Close()
}

// Close 关闭客户端发送通道，WritePump 随后关闭连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetID 获取客户端 ID
func (c *Client) GetID() string {
	return c.ID
}

// GetName 获取玩家昵称
func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName 设置玩家昵称
func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

// decodeFrame 按帧类型解码
func decodeFrame(kind int, data []byte) (*protocol.Message, error) {
	if kind == websocket.BinaryMessage {
		return codec.DecodeBinary(data)
	}
	return codec.DecodeJSON(data)
}

// encodeFrame 按客户端偏好的帧类型编码
func encodeFrame(msg *protocol.Message, binary bool) (frame, error) {
	if binary {
		return frame{kind: websocket.BinaryMessage, data: codec.EncodeBinary(msg)}, nil
	}
	data, err := codec.EncodeJSON(msg)
	if err != nil {
		return frame{}, err
	}
	return frame{kind: websocket.TextMessage, data: data}, nil
}

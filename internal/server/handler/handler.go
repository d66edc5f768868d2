package handler

import (
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/werewolf/internal/apperrors"
	"github.com/palemoky/werewolf/internal/game/room"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

// Handler 消息处理器
type Handler struct {
	roomManager *room.RoomManager
	handlers    map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(roomManager *room.RoomManager) *Handler {
	h := &Handler{roomManager: roomManager}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		// 连接操作
		protocol.MsgPing: h.handlePing,

		// 房间操作
		protocol.MsgJoinRoom:       h.handleJoinRoom,
		protocol.MsgLeaveRoom:      func(c types.ClientInterface, _ *protocol.Message) { h.handleLeaveRoom(c) },
		protocol.MsgStartGame:      h.handleStartGame,
		protocol.MsgGetPublicRooms: func(c types.ClientInterface, _ *protocol.Message) { h.handleGetPublicRooms(c) },

		// 游戏操作
		protocol.MsgWolfTarget:   h.targetHandler("wolf_target", h.roomManager.SubmitWolfTarget),
		protocol.MsgSeerTarget:   h.targetHandler("seer_target", h.roomManager.SubmitSeerTarget),
		protocol.MsgHunterTarget: h.targetHandler("hunter_target", h.roomManager.SubmitHunterTarget),
		protocol.MsgVote:         h.targetHandler("vote", h.roomManager.SubmitVote),

		protocol.MsgChat: h.handleChat,
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	log.Warn().
		Str("type", string(msg.Type)).
		Str("player", client.GetID()).
		Int("payload_bytes", len(msg.Payload)).
		Msg("⚠️ 未知消息类型")
	client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

// dropped 记录被静默丢弃的请求
func dropped(client types.ClientInterface, action string, err error) {
	var gameErr *apperrors.GameError
	if errors.As(err, &gameErr) {
		log.Debug().
			Str("player", client.GetID()).
			Str("room", client.GetRoom()).
			Str("action", action).
			Int("code", gameErr.Code).
			Msg(gameErr.Message)
		return
	}
	log.Warn().Err(err).Str("player", client.GetID()).Str("action", action).Msg("请求处理失败")
}

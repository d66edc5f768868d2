package handler

import (
	"errors"

	"github.com/palemoky/werewolf/internal/apperrors"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

// handleJoinRoom 处理加入房间，房间不存在时自动创建
func (h *Handler) handleJoinRoom(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.JoinRoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if _, err := h.roomManager.Join(client, payload.RoomID, payload.Name, payload.Public); err != nil {
		// 游戏已开始时必须告知，否则客户端会以为自己已加入
		if errors.Is(err, apperrors.ErrGameStarted) {
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeGameStarted))
			return
		}
		dropped(client, "join_room", err)
	}
}

// handleLeaveRoom 处理离开房间
func (h *Handler) handleLeaveRoom(client types.ClientInterface) {
	h.roomManager.Leave(client)
}

// handleStartGame 处理房主开始游戏
func (h *Handler) handleStartGame(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.RoomPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := h.roomManager.StartGame(client, payload.RoomID); err != nil {
		dropped(client, "start_game", err)
	}
}

// handleGetPublicRooms 返回公开房间列表
func (h *Handler) handleGetPublicRooms(client types.ClientInterface) {
	client.SendMessage(codec.MustNewMessage(protocol.MsgPublicRooms, protocol.PublicRoomsPayload{
		Rooms: h.roomManager.PublicRooms(),
	}))
}

package handler

import (
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

// handleChat 处理房间聊天
func (h *Handler) handleChat(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.ChatRequestPayload](msg)
	if err != nil {
		client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	roomID := payload.RoomID
	if roomID == "" {
		roomID = client.GetRoom()
	}

	if err := h.roomManager.Chat(client, roomID, payload.Text); err != nil {
		dropped(client, "chat", err)
	}
}

package handler

import (
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

// submitFunc 房间管理器的提交操作
type submitFunc func(client types.ClientInterface, roomID, targetID string) error

// targetHandler 为夜晚行动和投票生成处理器。
// 不合规的提交直接丢弃，不回复发送者。
func (h *Handler) targetHandler(action string, submit submitFunc) handlerFunc {
	return func(client types.ClientInterface, msg *protocol.Message) {
		payload, err := codec.ParsePayload[protocol.TargetPayload](msg)
		if err != nil {
			client.SendMessage(codec.NewErrorMessage(protocol.ErrCodeInvalidMsg))
			return
		}

		if err := submit(client, payload.RoomID, payload.TargetID); err != nil {
			dropped(client, action, err)
		}
	}
}

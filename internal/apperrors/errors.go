package apperrors

import (
	"github.com/palemoky/werewolf/internal/protocol"
)

// GameError 游戏错误（房间和处理器共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrRoomNotFound  = &GameError{Code: protocol.ErrCodeRoomNotFound, Message: "房间不存在"}
	ErrNotInRoom     = &GameError{Code: protocol.ErrCodeNotInRoom, Message: "您不在房间中"}
	ErrNotAlive      = &GameError{Code: protocol.ErrCodeNotAlive, Message: "您已出局"}
	ErrWrongRole     = &GameError{Code: protocol.ErrCodeWrongRole, Message: "您的身份不能执行该操作"}
	ErrPhaseMismatch = &GameError{Code: protocol.ErrCodePhaseMismatch, Message: "当前阶段不能执行该操作"}
	ErrNotHost       = &GameError{Code: protocol.ErrCodeNotHost, Message: "只有房主可以开始游戏"}
	ErrGameStarted   = &GameError{Code: protocol.ErrCodeGameStarted, Message: "游戏已开始"}
)

package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeRateLimit         = 1002 // 速率限制
	ErrCodeRoomNotFound      = 2001
	ErrCodeNotInRoom         = 2003
	ErrCodeGameStarted       = 2004 // 游戏已开始
	ErrCodeNotHost           = 2005
	ErrCodeNotAlive          = 3001
	ErrCodeWrongRole         = 3002
	ErrCodePhaseMismatch     = 3003
	ErrCodeServerMaintenance = 5003 // 服务器维护中
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeRateLimit:         "请求过于频繁",
	ErrCodeRoomNotFound:      "房间不存在",
	ErrCodeNotInRoom:         "您不在房间中",
	ErrCodeGameStarted:       "游戏已开始",
	ErrCodeNotHost:           "只有房主可以开始游戏",
	ErrCodeNotAlive:          "您已出局",
	ErrCodeWrongRole:         "您的身份不能执行该操作",
	ErrCodePhaseMismatch:     "当前阶段不能执行该操作",
	ErrCodeServerMaintenance: "服务器维护中",
}

package protocol

// --- 客户端请求 Payloads ---

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// JoinRoomPayload 加入房间请求，房间不存在时自动创建
type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// RoomPayload 只携带房间 ID 的请求（开始游戏）
type RoomPayload struct {
	RoomID string `json:"room_id"`
}

// TargetPayload 夜晚行动与投票请求
type TargetPayload struct {
	RoomID   string `json:"room_id"`
	TargetID string `json:"target_id"`
}

// ChatRequestPayload 聊天请求
type ChatRequestPayload struct {
	RoomID string `json:"room_id"`
	Text   string `json:"text"`
}

// --- 服务端响应 Payloads ---

// ConnectedPayload 连接成功响应
type ConnectedPayload struct {
	PlayerID string `json:"player_id"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// IsHostPayload 加入房间后告知是否为房主
type IsHostPayload struct {
	IsHost bool `json:"is_host"`
}

// PlayerInfo 公开的玩家信息（不含身份）
type PlayerInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Alive bool   `json:"alive"`
}

// RoomStatePayload 房间状态广播
type RoomStatePayload struct {
	RoomID   string       `json:"room_id"`
	Players  []PlayerInfo `json:"players"` // 按加入顺序
	Phase    string       `json:"phase"`
	DayCount int          `json:"day_count"`
}

// RolePayload 私密身份通知
type RolePayload struct {
	Role     string `json:"role"`
	RoleName string `json:"role_name"`
}

// SeerResultPayload 预言家查验结果
type SeerResultPayload struct {
	Name   string `json:"name"`
	IsWolf bool   `json:"is_wolf"`
}

// MediumResultPayload 灵媒结果
type MediumResultPayload struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	RoleName string `json:"role_name"`
}

// SystemPayload 系统公告
type SystemPayload struct {
	Text string `json:"text"`
}

// ChatPayload 聊天广播
type ChatPayload struct {
	From string `json:"from"`
	Text string `json:"text"`
	Time int64  `json:"time"` // 服务器时间戳（毫秒）
}

// RoomListItem 公开房间列表项
type RoomListItem struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
}

// PublicRoomsPayload 公开房间列表
type PublicRoomsPayload struct {
	Rooms []RoomListItem `json:"rooms"`
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

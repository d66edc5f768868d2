package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgPing MessageType = "ping" // 心跳 ping

	// 房间操作
	MsgJoinRoom       MessageType = "join_room"        // 加入（或创建）房间
	MsgLeaveRoom      MessageType = "leave_room"       // 离开房间
	MsgStartGame      MessageType = "start_game"       // 房主开始游戏
	MsgGetPublicRooms MessageType = "get_public_rooms" // 获取公开房间列表

	// 游戏操作
	MsgWolfTarget   MessageType = "wolf_target"   // 狼人选择袭击目标
	MsgSeerTarget   MessageType = "seer_target"   // 预言家选择查验目标
	MsgHunterTarget MessageType = "hunter_target" // 猎人选择守护目标
	MsgVote         MessageType = "vote"          // 白天投票

	MsgChat MessageType = "chat" // 聊天消息（双向）
)

// 服务端 → 客户端 消息类型
const (
	// 连接相关
	MsgConnected MessageType = "connected" // 连接成功
	MsgPong      MessageType = "pong"      // 心跳 pong

	// 房间相关
	MsgIsHost      MessageType = "is_host"      // 是否为房主
	MsgRoomState   MessageType = "room_state"   // 房间状态广播
	MsgPublicRooms MessageType = "public_rooms" // 公开房间列表

	// 游戏流程
	MsgRole         MessageType = "role"          // 私密身份通知
	MsgSeerResult   MessageType = "seer_result"   // 预言家查验结果
	MsgMediumResult MessageType = "medium_result" // 灵媒结果
	MsgSystem       MessageType = "system"        // 系统公告

	// 错误
	MsgError MessageType = "error" // 错误消息
)

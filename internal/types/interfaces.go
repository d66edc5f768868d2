package types

import (
	"time"

	"github.com/palemoky/werewolf/internal/protocol"
)

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	SetName(name string)
	GetRoom() string
	SetRoom(roomID string)
	SendMessage(msg *protocol.Message)
	Close()
}

// Timer 可停止的定时器，*time.Timer 满足该接口
type Timer interface {
	Stop() bool
}

// Clock 定时器工厂，测试中替换为手动触发的实现
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

package room

import (
	"sync"
	"time"

	"github.com/palemoky/werewolf/internal/game/rule"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

// Player 房间中的玩家
type Player struct {
	rule.Player
	IsHost bool                  // 第一个加入的玩家
	Client types.ClientInterface // 消息投递
}

// Room 游戏房间。以下字段都由 mu 保护，带 Locked 后缀的方法要求调用方已持有锁。
type Room struct {
	ID        string    // 房间 ID，同时作为显示名
	Public    bool      // 是否出现在公开列表中
	CreatedAt time.Time // 创建时间

	mu       sync.Mutex
	players  []*Player // 按加入顺序
	phase    Phase
	dayCount int
	night    *rule.NightActions
	votes    *rule.Votes

	closed bool        // 已从注册表移除
	timer  types.Timer // 当前阶段的定时器
	seq    uint64      // 定时器序号，过期回调据此识别
}

func newRoom(id string, public bool) *Room {
	return &Room{
		ID:        id,
		Public:    public,
		CreatedAt: time.Now(),
		phase:     PhaseLobby,
		night:     rule.NewNightActions(),
		votes:     rule.NewVotes(),
	}
}

// Phase 当前阶段
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// DayCount 当前天数
func (r *Room) DayCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dayCount
}

// PlayerCount 玩家数量
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Players 玩家公开信息快照
func (r *Room) Players() []protocol.PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playerInfosLocked()
}

func (r *Room) findPlayerLocked(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) removePlayerLocked(id string) *Player {
	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return p
		}
	}
	return nil
}

// rulePlayersLocked 返回结算用的玩家视图，修改会直接作用于房间玩家
func (r *Room) rulePlayersLocked() []*rule.Player {
	out := make([]*rule.Player, len(r.players))
	for i, p := range r.players {
		out[i] = &p.Player
	}
	return out
}

func (r *Room) playerInfosLocked() []protocol.PlayerInfo {
	infos := make([]protocol.PlayerInfo, len(r.players))
	for i, p := range r.players {
		infos[i] = protocol.PlayerInfo{ID: p.ID, Name: p.Name, Alive: p.Alive}
	}
	return infos
}

func (r *Room) sendLocked(id string, msg *protocol.Message) {
	if p := r.findPlayerLocked(id); p != nil && p.Client != nil {
		p.Client.SendMessage(msg)
	}
}

func (r *Room) broadcastLocked(msg *protocol.Message) {
	for _, p := range r.players {
		if p.Client != nil {
			p.Client.SendMessage(msg)
		}
	}
}

// announceLocked 广播系统公告
func (r *Room) announceLocked(text string) {
	r.broadcastLocked(codec.MustNewMessage(protocol.MsgSystem, protocol.SystemPayload{Text: text}))
}

// broadcastStateLocked 广播房间状态
func (r *Room) broadcastStateLocked() {
	r.broadcastLocked(codec.MustNewMessage(protocol.MsgRoomState, protocol.RoomStatePayload{
		RoomID:   r.ID,
		Players:  r.playerInfosLocked(),
		Phase:    r.phase.String(),
		DayCount: r.dayCount,
	}))
}

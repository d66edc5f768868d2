package room

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/werewolf/internal/apperrors"
	"github.com/palemoky/werewolf/internal/game/role"
	"github.com/palemoky/werewolf/internal/game/rule"
	"github.com/palemoky/werewolf/internal/metrics"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/types"
)

const (
	// DefaultPlayerName 未填写昵称时使用
	DefaultPlayerName = "无名氏"

	maxNameRunes = 16
)

// Options RoomManager 配置，零值字段使用默认值
type Options struct {
	Durations   Durations
	Clock       types.Clock
	Store       Store
	Metrics     *metrics.Collector
	Shuffle     role.ShuffleFunc
	DefaultName string
}

// RoomManager 房间注册表。锁顺序固定为先 rm.mu 后 Room.mu。
type RoomManager struct {
	durations   Durations
	clock       types.Clock
	persist     *persister
	metrics     *metrics.Collector
	shuffle     role.ShuffleFunc
	defaultName string

	rooms map[string]*Room
	mu    sync.RWMutex
}

// NewRoomManager 创建房间管理器
func NewRoomManager(opts Options) *RoomManager {
	rm := &RoomManager{
		durations:   opts.Durations,
		clock:       opts.Clock,
		metrics:     opts.Metrics,
		shuffle:     opts.Shuffle,
		defaultName: opts.DefaultName,
		rooms:       make(map[string]*Room),
	}
	if rm.durations == (Durations{}) {
		rm.durations = DefaultDurations()
	}
	if rm.clock == nil {
		rm.clock = realClock{}
	}
	if rm.defaultName == "" {
		rm.defaultName = DefaultPlayerName
	}
	if opts.Store != nil {
		rm.persist = newPersister(opts.Store)
	}
	return rm
}

// Join 加入房间，房间不存在时创建。已在其他房间的连接只有在目标房间可加入时才会离开原房间，
// 重复加入当前房间不做任何事。
func (rm *RoomManager) Join(client types.ClientInterface, roomID, name string, public bool) (*Room, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, apperrors.ErrRoomNotFound
	}
	name = rm.sanitizeName(name)

	rm.mu.Lock()
	defer rm.mu.Unlock()

	room, exists := rm.rooms[roomID]
	if exists && client.GetRoom() == roomID {
		return room, nil
	}
	if !exists {
		room = newRoom(roomID, public)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.phase != PhaseLobby {
		return nil, apperrors.ErrGameStarted
	}
	// 持有 rm.mu 写锁时才会嵌套两个房间锁
	if client.GetRoom() != "" {
		rm.leaveLocked(client)
	}

	if !exists {
		rm.rooms[roomID] = room
		rm.metrics.RoomCreated()
		log.Info().Str("room", roomID).Bool("public", public).Msg("🏠 房间已创建")
	}

	isHost := len(room.players) == 0
	room.players = append(room.players, &Player{
		Player: rule.Player{ID: client.GetID(), Name: name, Alive: true},
		IsHost: isHost,
		Client: client,
	})
	client.SetRoom(roomID)
	client.SetName(name)

	client.SendMessage(codec.MustNewMessage(protocol.MsgIsHost, protocol.IsHostPayload{IsHost: isHost}))
	room.announceLocked(fmt.Sprintf("👤 %s 加入了房间", name))
	room.broadcastStateLocked()
	rm.saveLocked(room)

	log.Info().Str("room", roomID).Str("player", name).Bool("host", isHost).Msg("👤 玩家加入房间")
	return room, nil
}

// Leave 离开房间（主动离开或断开连接）。最后一名玩家离开时房间被销毁。
func (rm *RoomManager) Leave(client types.ClientInterface) {
	if client.GetRoom() == "" {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.leaveLocked(client)
}

// leaveLocked 调用方需持有 rm.mu
func (rm *RoomManager) leaveLocked(client types.ClientInterface) {
	roomID := client.GetRoom()
	client.SetRoom("")
	room, exists := rm.rooms[roomID]
	if !exists {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	player := room.removePlayerLocked(client.GetID())
	if player == nil {
		return
	}
	log.Info().Str("room", roomID).Str("player", player.Name).Msg("👋 玩家离开房间")

	if len(room.players) == 0 {
		delete(rm.rooms, roomID)
		room.closed = true
		rm.stopTimerLocked(room)
		rm.metrics.RoomDestroyed()
		rm.persist.enqueue(persistJob{roomID: roomID, remove: true})
		log.Info().Str("room", roomID).Msg("🏠 房间已解散")
		return
	}

	room.announceLocked(fmt.Sprintf("👋 %s 离开了房间", player.Name))
	room.broadcastStateLocked()
	rm.saveLocked(room)
}

// StartGame 房主开始游戏：分配身份、私信身份并进入第一个夜晚
func (rm *RoomManager) StartGame(client types.ClientInterface, roomID string) error {
	r, err := rm.lockRoom(roomID)
	if err != nil {
		return err
	}
	defer r.mu.Unlock()

	player := r.findPlayerLocked(client.GetID())
	switch {
	case player == nil:
		return apperrors.ErrNotInRoom
	case !player.IsHost:
		return apperrors.ErrNotHost
	case r.phase != PhaseLobby:
		return apperrors.ErrGameStarted
	}

	roles := role.Deal(len(r.players), rm.shuffle)
	for i, p := range r.players {
		p.Role = roles[i]
		if p.Client != nil {
			p.Client.SendMessage(codec.MustNewMessage(protocol.MsgRole, protocol.RolePayload{
				Role:     p.Role.String(),
				RoleName: p.Role.DisplayName(),
			}))
		}
	}

	r.dayCount = 1
	rm.enterPhaseLocked(r, PhaseNight)
	r.announceLocked("🌙 天黑请闭眼，请各身份开始行动。")
	rm.armLocked(r)

	log.Info().Str("room", r.ID).Int("players", len(r.players)).Msg("🎮 游戏开始")
	return nil
}

// GetRoom 获取房间
func (rm *RoomManager) GetRoom(roomID string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[roomID]
}

// RoomCount 当前房间数量
func (rm *RoomManager) RoomCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// PublicRooms 获取公开房间列表（按 ID 排序）
func (rm *RoomManager) PublicRooms() []protocol.RoomListItem {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	rooms := make([]protocol.RoomListItem, 0)
	for id, room := range rm.rooms {
		if !room.Public {
			continue
		}
		room.mu.Lock()
		rooms = append(rooms, protocol.RoomListItem{ID: id, Players: len(room.players)})
		room.mu.Unlock()
	}
	slices.SortFunc(rooms, func(a, b protocol.RoomListItem) int {
		return strings.Compare(a.ID, b.ID)
	})
	return rooms
}

// GetActiveGamesCount 获取进行中的游戏数量
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	count := 0
	for _, room := range rm.rooms {
		room.mu.Lock()
		if room.phase.InGame() {
			count++
		}
		room.mu.Unlock()
	}
	return count
}

// Close 停止所有房间的定时器和存储写入，用于进程退出
func (rm *RoomManager) Close() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for _, room := range rm.rooms {
		room.mu.Lock()
		room.closed = true
		rm.stopTimerLocked(room)
		room.mu.Unlock()
	}
	rm.persist.stop()
}

// lockRoom 查找并锁定房间，调用方负责解锁
func (rm *RoomManager) lockRoom(roomID string) (*Room, error) {
	rm.mu.RLock()
	room, exists := rm.rooms[roomID]
	rm.mu.RUnlock()
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}

	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

func (rm *RoomManager) sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return rm.defaultName
	}
	if runes := []rune(name); len(runes) > maxNameRunes {
		name = string(runes[:maxNameRunes])
	}
	return name
}

package room

import (
	"time"

	"github.com/palemoky/werewolf/internal/server/storage"
)

// snapshotLocked 将 Room 转换为可序列化的 RoomData
func (r *Room) snapshotLocked() *storage.RoomData {
	data := &storage.RoomData{
		ID:        r.ID,
		Phase:     r.phase.String(),
		DayCount:  r.dayCount,
		Public:    r.Public,
		Players:   make([]storage.PlayerData, 0, len(r.players)),
		CreatedAt: r.CreatedAt.Unix(),
		UpdatedAt: time.Now().Unix(),
	}

	for _, p := range r.players {
		data.Players = append(data.Players, storage.PlayerData{
			ID:     p.ID,
			Name:   p.Name,
			Role:   p.Role.String(),
			Alive:  p.Alive,
			IsHost: p.IsHost,
		})
	}
	return data
}

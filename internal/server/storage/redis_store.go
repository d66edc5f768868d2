package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	roomKeyPrefix = "room:"
	winsKey       = "stats:wins"

	// 房间快照过期时间
	roomExpiration = 2 * time.Hour
)

// RoomData 房间快照（用于 Redis 序列化，只写不读回游戏）
type RoomData struct {
	ID        string       `json:"id"`
	Phase     string       `json:"phase"`
	DayCount  int          `json:"day_count"`
	Public    bool         `json:"public"`
	Players   []PlayerData `json:"players"`
	CreatedAt int64        `json:"created_at"`
	UpdatedAt int64        `json:"updated_at"`
}

// PlayerData 玩家数据
type PlayerData struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Alive  bool   `json:"alive"`
	IsHost bool   `json:"is_host"`
}

// RedisStore Redis 存储，nil 或未连接时所有写操作为空操作
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (rs *RedisStore) disabled() bool {
	return rs == nil || rs.client == nil
}

// Ping 检查连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	if rs.disabled() {
		return nil
	}
	return rs.client.Ping(ctx).Err()
}

// --- 房间快照 ---

// SaveRoom 保存房间快照
func (rs *RedisStore) SaveRoom(ctx context.Context, roomID string, data *RoomData) error {
	if rs.disabled() || data == nil {
		return nil
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("序列化房间数据失败: %w", err)
	}

	return rs.client.Set(ctx, roomKeyPrefix+roomID, jsonData, roomExpiration).Err()
}

// DeleteRoom 删除房间快照
func (rs *RedisStore) DeleteRoom(ctx context.Context, roomID string) error {
	if rs.disabled() {
		return nil
	}
	return rs.client.Del(ctx, roomKeyPrefix+roomID).Err()
}

// --- 胜负统计 ---

// RecordWin 累加阵营胜场
func (rs *RedisStore) RecordWin(ctx context.Context, winner string) error {
	if rs.disabled() {
		return nil
	}
	return rs.client.HIncrBy(ctx, winsKey, winner, 1).Err()
}

// GetWins 读取各阵营胜场
func (rs *RedisStore) GetWins(ctx context.Context) (map[string]int64, error) {
	wins := make(map[string]int64)
	if rs.disabled() {
		return wins, nil
	}

	raw, err := rs.client.HGetAll(ctx, winsKey).Result()
	if err != nil {
		return nil, err
	}
	for faction, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("解析 %s 胜场失败: %w", faction, err)
		}
		wins[faction] = n
	}
	return wins, nil
}

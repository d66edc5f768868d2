package storage

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

// storedRoom decodes the snapshot written under room:<id>.
func storedRoom(t *testing.T, mr *miniredis.Miniredis, roomID string) *RoomData {
	t.Helper()

	raw, err := mr.Get(roomKeyPrefix + roomID)
	require.NoError(t, err)

	var data RoomData
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return &data
}

func TestRedisStore_SaveDeleteRoom(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	roomData := &RoomData{
		ID:       "村庄",
		Phase:    "night",
		DayCount: 1,
		Public:   true,
		Players: []PlayerData{
			{ID: "p1", Name: "alice", Role: "werewolf", Alive: true, IsHost: true},
			{ID: "p2", Name: "bob", Role: "seer", Alive: false},
		},
		CreatedAt: time.Now().Unix(),
	}

	require.NoError(t, store.SaveRoom(ctx, roomData.ID, roomData))
	assert.True(t, mr.Exists("room:村庄"))
	assert.Equal(t, roomExpiration, mr.TTL("room:村庄"))

	loaded := storedRoom(t, mr, roomData.ID)
	assert.Equal(t, roomData.Phase, loaded.Phase)
	assert.Equal(t, roomData.Players, loaded.Players)

	require.NoError(t, store.SaveRoom(ctx, "r", nil))
	assert.False(t, mr.Exists("room:r"))

	require.NoError(t, store.DeleteRoom(ctx, roomData.ID))
	assert.False(t, mr.Exists("room:村庄"))
}

func TestRedisStore_Wins(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordWin(ctx, "village"))
	require.NoError(t, store.RecordWin(ctx, "village"))
	require.NoError(t, store.RecordWin(ctx, "werewolf"))

	wins, err := store.GetWins(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"village": 2, "werewolf": 1}, wins)
}

func TestRedisStore_Disabled(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for _, store := range []*RedisStore{nil, NewRedisStore(nil)} {
		assert.NoError(t, store.Ping(ctx))
		assert.NoError(t, store.SaveRoom(ctx, "r", &RoomData{ID: "r"}))
		assert.NoError(t, store.DeleteRoom(ctx, "r"))
		assert.NoError(t, store.RecordWin(ctx, "village"))

		wins, err := store.GetWins(ctx)
		assert.NoError(t, err)
		assert.Empty(t, wins)
	}
}

func TestRedisStore_ConnectionError(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, store.Ping(ctx))
	assert.Error(t, store.SaveRoom(ctx, "r", &RoomData{ID: "r"}))
}

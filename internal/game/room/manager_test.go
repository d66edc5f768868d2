package room

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/werewolf/internal/apperrors"
	"github.com/palemoky/werewolf/internal/game/role"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/server/storage"
	"github.com/palemoky/werewolf/internal/testutil"
)

func TestJoin_FirstJoinerIsHost(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	clients := joinPlayers(t, rm, "village", 3)

	for i, c := range clients {
		msg := c.LastOfType(protocol.MsgIsHost)
		require.NotNil(t, msg)
		p, err := codec.ParsePayload[protocol.IsHostPayload](msg)
		require.NoError(t, err)
		assert.Equal(t, i == 0, p.IsHost, "client %d", i)
		assert.Equal(t, "village", c.GetRoom())
	}

	state := lastState(t, clients[0])
	assert.Equal(t, "village", state.RoomID)
	assert.Equal(t, "lobby", state.Phase)
	assert.Zero(t, state.DayCount)
	require.Len(t, state.Players, 3)
	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{state.Players[0].ID, state.Players[1].ID, state.Players[2].ID})
	assert.True(t, state.Players[2].Alive)
}

func TestJoin_Names(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)

	anon := testutil.NewSimpleClient("a", "")
	_, err := rm.Join(anon, "r", "   ", false)
	require.NoError(t, err)
	assert.Equal(t, "无名氏", anon.GetName())

	long := testutil.NewSimpleClient("b", "")
	_, err = rm.Join(long, "r", "一二三四五六七八九十一二三四五六七八", false)
	require.NoError(t, err)
	assert.Equal(t, "一二三四五六七八九十一二三四五六", long.GetName())

	_, err = rm.Join(testutil.NewSimpleClient("c", ""), "  ", "x", false)
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)
}

func TestJoin_RefusedAfterStart(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	_, r := startGame(t, rm, "r1", 4)

	late := testutil.NewSimpleClient("late", "")
	_, err := rm.Join(late, "r1", "late", false)
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
	assert.Empty(t, late.GetRoom())
	assert.Equal(t, 4, r.PlayerCount())
	assert.Len(t, aliveIDs(r), 4)
}

func TestJoin_SwitchRoomLeavesPrevious(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	c := testutil.NewSimpleClient("p1", "")

	_, err := rm.Join(c, "first", "alice", true)
	require.NoError(t, err)
	_, err = rm.Join(c, "second", "alice", true)
	require.NoError(t, err)

	assert.Nil(t, rm.GetRoom("first"))
	assert.Equal(t, "second", c.GetRoom())
	assert.Equal(t, 1, rm.RoomCount())
}

func TestJoin_RepeatMidGameKeepsSeat(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	clients, r := startGame(t, rm, "r1", 5)

	got, err := rm.Join(clients[3], "r1", "again", true)
	require.NoError(t, err)
	assert.Same(t, r, got)
	assert.Equal(t, 5, r.PlayerCount())
	assert.Equal(t, "r1", clients[3].GetRoom())
	assert.Equal(t, PhaseNight, r.Phase())
}

func TestJoin_RepeatInLobbyKeepsHost(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	clients := joinPlayers(t, rm, "r1", 3)
	r := rm.GetRoom("r1")
	sentBefore := len(clients[0].SentMessages())

	_, err := rm.Join(clients[0], "r1", "renamed", true)
	require.NoError(t, err)

	r.mu.Lock()
	defer r.mu.Unlock()
	require.Len(t, r.players, 3)
	assert.Equal(t, "p1", r.players[0].ID)
	assert.True(t, r.players[0].IsHost)
	assert.Equal(t, "Np1", r.players[0].Name)
	assert.Len(t, clients[0].SentMessages(), sentBefore)
}

func TestJoin_SwitchToStartedRoomStaysPut(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	_, started := startGame(t, rm, "busy", 4)

	c := testutil.NewSimpleClient("x", "")
	_, err := rm.Join(c, "lobby", "x", true)
	require.NoError(t, err)

	_, err = rm.Join(c, "busy", "x", true)
	assert.ErrorIs(t, err, apperrors.ErrGameStarted)
	assert.Equal(t, "lobby", c.GetRoom())
	require.NotNil(t, rm.GetRoom("lobby"))
	assert.Equal(t, 1, rm.GetRoom("lobby").PlayerCount())
	assert.Equal(t, 4, started.PlayerCount())
}

func TestLeave_HostIsNotReassigned(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	clients := joinPlayers(t, rm, "r1", 3)

	rm.Leave(clients[0])
	assert.Empty(t, clients[0].GetRoom())

	err := rm.StartGame(clients[1], "r1")
	assert.ErrorIs(t, err, apperrors.ErrNotHost)

	state := lastState(t, clients[1])
	assert.Len(t, state.Players, 2)
	assert.Contains(t, systemTexts(t, clients[1]), "👋 Np1 离开了房间")
}

func TestLeave_LastPlayerDestroysRoom(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	clients := joinPlayers(t, rm, "r1", 2)
	r := rm.GetRoom("r1")

	rm.Leave(clients[0])
	assert.NotNil(t, rm.GetRoom("r1"))
	rm.Leave(clients[1])
	assert.Nil(t, rm.GetRoom("r1"))
	assert.Zero(t, rm.RoomCount())

	// Leaving twice is harmless.
	assert.NotPanics(t, func() { rm.Leave(clients[1]) })

	// Operations against the destroyed room are no-ops.
	assert.ErrorIs(t, rm.StartGame(clients[0], "r1"), apperrors.ErrRoomNotFound)
	assert.Equal(t, PhaseLobby, r.Phase())
}

func TestStartGame(t *testing.T) {
	t.Parallel()

	rm, clock := newTestManager(t)
	clients := joinPlayers(t, rm, "r1", 5)

	assert.ErrorIs(t, rm.StartGame(clients[1], "r1"), apperrors.ErrNotHost)
	assert.ErrorIs(t, rm.StartGame(testutil.NewSimpleClient("x", ""), "r1"), apperrors.ErrNotInRoom)
	assert.ErrorIs(t, rm.StartGame(clients[0], "nope"), apperrors.ErrRoomNotFound)
	assert.Zero(t, clock.Pending())

	require.NoError(t, rm.StartGame(clients[0], "r1"))
	assert.ErrorIs(t, rm.StartGame(clients[0], "r1"), apperrors.ErrGameStarted)

	want := []role.Role{role.Werewolf, role.Seer, role.Hunter, role.Villager, role.Villager}
	for i, c := range clients {
		msgs := c.MessagesOfType(protocol.MsgRole)
		require.Len(t, msgs, 1, "client %d", i)
		p, err := codec.ParsePayload[protocol.RolePayload](msgs[0])
		require.NoError(t, err)
		assert.Equal(t, want[i].String(), p.Role)
		assert.Equal(t, want[i].DisplayName(), p.RoleName)
	}

	state := lastState(t, clients[4])
	assert.Equal(t, "night", state.Phase)
	assert.Equal(t, 1, state.DayCount)

	assert.Equal(t, 1, clock.Pending())
	assert.Equal(t, testDurations.Night, clock.Last().Duration)
	assert.Equal(t, 1, rm.GetActiveGamesCount())
}

func TestPublicRooms(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	joinPlayers(t, rm, "b-room", 2)
	joinPlayers(t, rm, "a-room", 1)
	_, err := rm.Join(testutil.NewSimpleClient("hidden", ""), "secret", "h", false)
	require.NoError(t, err)

	rooms := rm.PublicRooms()
	assert.Equal(t, []protocol.RoomListItem{
		{ID: "a-room", Players: 1},
		{ID: "b-room", Players: 2},
	}, rooms)
	assert.Equal(t, 3, rm.RoomCount())
	assert.Zero(t, rm.GetActiveGamesCount())
}

func TestChat(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	clients := joinPlayers(t, rm, "r1", 2)

	require.NoError(t, rm.Chat(clients[0], "r1", "  大家好  "))
	require.NoError(t, rm.Chat(clients[0], "r1", "   "))

	msgs := clients[1].MessagesOfType(protocol.MsgChat)
	require.Len(t, msgs, 1)
	p, err := codec.ParsePayload[protocol.ChatPayload](msgs[0])
	require.NoError(t, err)
	assert.Equal(t, "Np1", p.From)
	assert.Equal(t, "大家好", p.Text)
	assert.NotZero(t, p.Time)

	outsider := testutil.NewSimpleClient("x", "")
	assert.ErrorIs(t, rm.Chat(outsider, "r1", "hi"), apperrors.ErrNotInRoom)
	assert.ErrorIs(t, rm.Chat(outsider, "nope", "hi"), apperrors.ErrRoomNotFound)
}

func TestClose_StopsTimers(t *testing.T) {
	t.Parallel()

	rm, clock := newTestManager(t)
	_, r := startGame(t, rm, "r1", 4)
	require.Equal(t, 1, clock.Pending())

	rm.Close()
	assert.Zero(t, clock.Pending())

	// A firing that raced Close does nothing.
	clock.Last().Fire()
	assert.Equal(t, PhaseNight, r.Phase())
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	rm, _ := newTestManager(t)
	clients, _ := startGame(t, rm, "r1", 4)

	assert.ErrorIs(t, rm.SubmitVote(clients[0], "r1", "p2"), apperrors.ErrPhaseMismatch)
	require.NoError(t, rm.SubmitWolfTarget(clients[0], "r1", "p2"))

	n, err := promtestutil.GatherAndCount(rm.metrics.Registry(), "werewolf_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = promtestutil.GatherAndCount(rm.metrics.Registry(), "werewolf_rooms")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPersistence_Redis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := storage.NewRedisStore(client)

	rm, clock := newTestManager(t, func(o *Options) { o.Store = store })

	// Fewer than four players are all villagers, so the first night ends the game.
	clients, _ := startGame(t, rm, "r1", 3)

	assert.Eventually(t, func() bool {
		raw, err := mr.Get("room:r1")
		if err != nil {
			return false
		}
		var data storage.RoomData
		return json.Unmarshal([]byte(raw), &data) == nil && data.Phase == "night" && len(data.Players) == 3
	}, 2*time.Second, 10*time.Millisecond)

	fireNext(t, clock)
	assert.Eventually(t, func() bool {
		wins, err := store.GetWins(context.Background())
		return err == nil && wins["village"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	for _, c := range clients {
		rm.Leave(c)
	}
	assert.Eventually(t, func() bool {
		return !mr.Exists("room:r1")
	}, 2*time.Second, 10*time.Millisecond)
}

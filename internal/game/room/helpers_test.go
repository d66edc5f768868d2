package room

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/palemoky/werewolf/internal/metrics"
	"github.com/palemoky/werewolf/internal/protocol"
	"github.com/palemoky/werewolf/internal/protocol/codec"
	"github.com/palemoky/werewolf/internal/testutil"
)

var testDurations = Durations{
	Night:  60 * time.Second,
	Day:    60 * time.Second,
	Voting: 30 * time.Second,
}

// keepOrder leaves the quota order untouched so seats get predictable roles.
func keepOrder(int, func(i, j int)) {}

func newTestManager(t *testing.T, opts ...func(*Options)) (*RoomManager, *testutil.FakeClock) {
	t.Helper()

	clock := testutil.NewFakeClock()
	o := Options{
		Durations: testDurations,
		Clock:     clock,
		Metrics:   metrics.NewCollector(),
		Shuffle:   keepOrder,
	}
	for _, opt := range opts {
		opt(&o)
	}

	rm := NewRoomManager(o)
	t.Cleanup(rm.Close)
	return rm, clock
}

// joinPlayers joins n clients p1..pn to roomID in order.
func joinPlayers(t *testing.T, rm *RoomManager, roomID string, n int) []*testutil.SimpleClient {
	t.Helper()

	clients := make([]*testutil.SimpleClient, n)
	for i := range n {
		id := fmt.Sprintf("p%d", i+1)
		clients[i] = testutil.NewSimpleClient(id, "")
		_, err := rm.Join(clients[i], roomID, "N"+id, true)
		require.NoError(t, err)
	}
	return clients
}

// startGame joins n players and starts the game as p1.
func startGame(t *testing.T, rm *RoomManager, roomID string, n int) ([]*testutil.SimpleClient, *Room) {
	t.Helper()

	clients := joinPlayers(t, rm, roomID, n)
	require.NoError(t, rm.StartGame(clients[0], roomID))

	r := rm.GetRoom(roomID)
	require.NotNil(t, r)
	return clients, r
}

func fireNext(t *testing.T, clock *testutil.FakeClock) {
	t.Helper()
	require.True(t, clock.FireNext(), "expected an armed phase timer")
}

func systemTexts(t *testing.T, c *testutil.SimpleClient) []string {
	t.Helper()

	var texts []string
	for _, msg := range c.MessagesOfType(protocol.MsgSystem) {
		p, err := codec.ParsePayload[protocol.SystemPayload](msg)
		require.NoError(t, err)
		texts = append(texts, p.Text)
	}
	return texts
}

func lastState(t *testing.T, c *testutil.SimpleClient) *protocol.RoomStatePayload {
	t.Helper()

	msg := c.LastOfType(protocol.MsgRoomState)
	require.NotNil(t, msg, "no room_state received")
	p, err := codec.ParsePayload[protocol.RoomStatePayload](msg)
	require.NoError(t, err)
	return p
}

func aliveIDs(r *Room) []string {
	var ids []string
	for _, p := range r.Players() {
		if p.Alive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

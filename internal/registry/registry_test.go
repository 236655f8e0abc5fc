package registry

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mystic-06/quik-type/internal/game"
)

type nopConn struct{}

func (nopConn) WriteJSON(v interface{}) error { return nil }
func (nopConn) Close() error                  { return nil }

func join(t *testing.T, room *game.Room, id string) {
	t.Helper()
	_, err := room.Join(game.NewParticipant(id, "user-"+id, nopConn{}))
	require.NoError(t, err)
}

func TestGetOrCreate(t *testing.T) {
	reg := New(nil)

	room := reg.GetOrCreate("room-1", "host-1")
	require.NotNil(t, room)

	assert.Same(t, room, reg.Get("room-1"))
	assert.Nil(t, reg.Get("room-2"))
}

func TestGetOrCreate_ExistingRoomIsShared(t *testing.T) {
	reg := New(nil)

	first := reg.GetOrCreate("room-1", "host-1")
	second := reg.GetOrCreate("room-1", "host-2")

	assert.Same(t, first, second, "second caller must land in the first caller's room")
	assert.Equal(t, "host-1", first.Snapshot().HostID)
}

// Two connections opening the same fresh room id interleave as
// create/create/join; both joins must land in the one room the registry
// serves, or the loser is stranded in an unreachable room.
func TestGetOrCreate_ConcurrentFirstJoins(t *testing.T) {
	reg := New(nil)

	var wg sync.WaitGroup
	rooms := make([]*game.Room, 2)
	errs := make([]error, 2)
	for i, id := range []string{"h1", "h2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			room := reg.GetOrCreate("room-1", id)
			_, errs[i] = room.Join(game.NewParticipant(id, "user-"+id, nopConn{}))
			rooms[i] = room
		}(i, id)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Same(t, rooms[0], rooms[1])
	served := reg.Get("room-1")
	require.NotNil(t, served)
	assert.Same(t, rooms[0], served)
	assert.Equal(t, 2, served.Count())
}

func TestDelete(t *testing.T) {
	reg := New(nil)
	reg.GetOrCreate("room-1", "host-1")

	assert.True(t, reg.Delete("room-1"))
	assert.Nil(t, reg.Get("room-1"))
	assert.False(t, reg.Delete("room-1"))
}

func TestSweep(t *testing.T) {
	reg := New(nil)

	staleEmpty := reg.GetOrCreate("stale-empty", "host-1")
	staleEmpty.CreatedAt = time.Now().Add(-25 * time.Hour)

	staleOccupied := reg.GetOrCreate("stale-occupied", "host-2")
	staleOccupied.CreatedAt = time.Now().Add(-25 * time.Hour)
	join(t, staleOccupied, "host-2")

	reg.GetOrCreate("fresh-empty", "host-3")

	removed := reg.Sweep(24 * time.Hour)

	assert.Equal(t, 1, removed)
	assert.Nil(t, reg.Get("stale-empty"))
	assert.NotNil(t, reg.Get("stale-occupied"), "occupied rooms are never swept")
	assert.NotNil(t, reg.Get("fresh-empty"), "young empty rooms wait for the idle window")
}

func TestStats(t *testing.T) {
	reg := New(nil)

	rooms, participants := reg.Stats()
	assert.Zero(t, rooms)
	assert.Zero(t, participants)

	a := reg.GetOrCreate("room-a", "host-a")
	join(t, a, "host-a")
	join(t, a, "p2")

	b := reg.GetOrCreate("room-b", "host-b")
	join(t, b, "host-b")

	rooms, participants = reg.Stats()
	assert.Equal(t, 2, rooms)
	assert.Equal(t, 3, participants)
}

func TestDebugSnapshot(t *testing.T) {
	reg := New(nil)
	room := reg.GetOrCreate("room-a", "host-a")
	join(t, room, "host-a")
	require.NoError(t, room.ToggleReady("host-a"))

	snaps := reg.DebugSnapshot()

	require.Len(t, snaps, 1)
	assert.Equal(t, "room-a", snaps[0].ID)
	assert.Equal(t, 1, snaps[0].ParticipantCount)
	require.Len(t, snaps[0].Participants, 1)
	assert.Equal(t, "user-host-a", snaps[0].Participants[0].Username)
	assert.True(t, snaps[0].Participants[0].IsReady)
}

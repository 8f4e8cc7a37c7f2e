package rooms

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreate(t *testing.T) {
	registry, _ := setupRegistry(t)

	t.Run("Happy path - new room starts empty", func(t *testing.T) {
		room, err := registry.Create(testParams("room-1", "ABC123", 3, 2))
		require.NoError(t, err)

		assert.Equal(t, StatusInit, room.Status)
		assert.Equal(t, 0, room.Votes.Total())
		assert.Empty(t, room.VotedUsers)
		assert.Equal(t, testHeroes(), room.Heroes)
		assert.Equal(t, int64(1), room.Version)
		assert.Equal(t, testEpoch, room.CreatedAt)
		assert.True(t, registry.Exists("room-1"))
		assert.True(t, registry.ExistsByPassword("ABC123"))
	})

	t.Run("Unhappy path - password already used", func(t *testing.T) {
		_, err := registry.Create(testParams("room-2", "ABC123", 3, 1))
		require.ErrorIs(t, err, ErrDuplicateKey)
		assert.False(t, registry.Exists("room-2"))
	})

	t.Run("Unhappy path - id already used", func(t *testing.T) {
		_, err := registry.Create(testParams("room-1", "OTHER1", 3, 1))
		require.ErrorIs(t, err, ErrDuplicateKey)
		assert.False(t, registry.ExistsByPassword("OTHER1"))
	})

	t.Run("Unhappy path - invalid parameters", func(t *testing.T) {
		cases := map[string]func(p *CreateParams){
			"missing fingerprint": func(p *CreateParams) { p.CreatorFingerprint = "" },
			"missing username":    func(p *CreateParams) { p.CreatorUsername = "" },
			"zero max votes":      func(p *CreateParams) { p.MaxVotes = 0 },
			"too many per user":   func(p *CreateParams) { p.VotesPerUser = 6 },
			"four heroes":         func(p *CreateParams) { p.Heroes = p.Heroes[:4] },
			"repeated slot":       func(p *CreateParams) { p.Heroes[4].PlayerSlot = 1 },
		}
		for name, mutate := range cases {
			p := testParams("room-bad", "BAD123", 3, 1)
			mutate(&p)
			_, err := registry.Create(p)
			assert.ErrorIs(t, err, ErrInvalidRoom, name)
		}
		assert.False(t, registry.Exists("room-bad"))
	})
}

func TestRegistryConcurrentCreateSamePassword(t *testing.T) {
	registry, _ := setupRegistry(t)

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = registry.Create(testParams(fmt.Sprintf("room-%d", i), "SAME01", 2, 1))
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateKey)
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, registry.Len())
}

func TestRegistryReadsReturnCopies(t *testing.T) {
	registry, _ := setupRegistry(t)
	_, err := registry.Create(testParams("room-1", "ABC123", 3, 1))
	require.NoError(t, err)

	before, err := registry.Get("room-1")
	require.NoError(t, err)

	leaked, err := registry.GetByPassword("ABC123")
	require.NoError(t, err)
	leaked.Heroes[0].Nickname = "changed"
	leaked.VotedUsers["someone"] = &Voter{Started: true}
	leaked.Status = StatusFinished

	after, err := registry.Get("room-1")
	require.NoError(t, err)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("stored room changed through a copy (-before +after):\n%s", diff)
	}
}

func TestRegistryMutate(t *testing.T) {
	registry, c := setupRegistry(t)
	_, err := registry.Create(testParams("room-1", "ABC123", 3, 1))
	require.NoError(t, err)

	t.Run("Happy path - bumps version and timestamp", func(t *testing.T) {
		c.Advance(time.Minute)
		room, err := registry.Mutate("room-1", func(room *Room) error {
			room.PlayerOrder = []int{5, 4, 3, 2, 1}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), room.Version)
		assert.Equal(t, testEpoch.Add(time.Minute), room.UpdatedAt)
		assert.Equal(t, []int{5, 4, 3, 2, 1}, room.PlayerOrder)
	})

	t.Run("Unhappy path - failing function keeps the version", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := registry.Mutate("room-1", func(room *Room) error { return boom })
		require.ErrorIs(t, err, boom)

		room, err := registry.Get("room-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), room.Version)
	})

	t.Run("Unhappy path - unknown room", func(t *testing.T) {
		_, err := registry.Mutate("missing", func(room *Room) error { return nil })
		assert.ErrorIs(t, err, ErrRoomNotFound)
	})
}

func TestRegistryRemove(t *testing.T) {
	registry, _ := setupRegistry(t)
	observer := &recordingObserver{}
	registry.Observe(observer)

	_, err := registry.Create(testParams("room-1", "ABC123", 3, 1))
	require.NoError(t, err)

	require.NoError(t, registry.Remove("room-1"))
	assert.False(t, registry.Exists("room-1"))
	assert.False(t, registry.ExistsByPassword("ABC123"))
	assert.ErrorIs(t, registry.Remove("room-1"), ErrRoomNotFound)
	_, err = registry.GetByPassword("ABC123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Equal(t, []string{"room-1"}, observer.removed)

	// the password is free again
	_, err = registry.Create(testParams("room-2", "ABC123", 3, 1))
	require.NoError(t, err)
}

func TestRegistryRemoveIf(t *testing.T) {
	registry, _ := setupRegistry(t)
	_, err := registry.Create(testParams("room-1", "ABC123", 3, 1))
	require.NoError(t, err)

	removed, err := registry.RemoveIf("room-1", func(room *Room) bool { return room.IsFinished() })
	require.NoError(t, err)
	assert.False(t, removed)
	assert.True(t, registry.Exists("room-1"))

	removed, err = registry.RemoveIf("room-1", func(room *Room) bool { return room.Status == StatusInit })
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, registry.Len())
}

func TestRegistryObservers(t *testing.T) {
	registry, _ := setupRegistry(t)
	first := &recordingObserver{}
	second := &recordingObserver{}
	registry.Observe(first)
	registry.Observe(second)

	_, err := registry.Create(testParams("room-1", "ABC123", 3, 1))
	require.NoError(t, err)
	_, err = registry.Mutate("room-1", func(room *Room) error { return nil })
	require.NoError(t, err)
	_, err = registry.Mutate("room-1", func(room *Room) error { return errors.New("no change") })
	require.Error(t, err)

	assert.Equal(t, []int64{1, 2}, first.versions())
	assert.Equal(t, []int64{1, 2}, second.versions())

	// each observer gets its own copy
	first.updates[1].Status = StatusFinished
	assert.Equal(t, StatusInit, second.updates[1].Status)
}

func TestRegistryRestore(t *testing.T) {
	registry, _ := setupRegistry(t)
	observer := &recordingObserver{}
	registry.Observe(observer)

	good, err := NewRoom(testParams("room-1", "ABC123", 2, 2), testEpoch)
	require.NoError(t, err)
	good.VotedUsers["a"] = &Voter{Started: true, VotedPlayers: []int{1, 3}, Username: "alice"}
	good.VotedUsers["b"] = &Voter{Started: true, VotedPlayers: []int{3}}
	good.Version = 9

	clash, err := NewRoom(testParams("room-2", "ABC123", 2, 1), testEpoch)
	require.NoError(t, err)

	broken, err := NewRoom(testParams("room-3", "XYZ789", 2, 1), testEpoch)
	require.NoError(t, err)
	broken.VotedUsers["c"] = &Voter{Started: true, VotedPlayers: []int{1, 2}}

	n, err := registry.Restore(good, clash, broken)
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.ErrorIs(t, err, ErrInvalidRoom)

	room, err := registry.Get("room-1")
	require.NoError(t, err)
	assert.Equal(t, 1, room.Votes.Get(1))
	assert.Equal(t, 2, room.Votes.Get(3))
	assert.Equal(t, map[string]int{"1": 1, "3": 2}, room.Votes.Map())
	assert.Equal(t, int64(9), room.Version)
	assert.Empty(t, observer.versions())
}

func TestRoomClone(t *testing.T) {
	room, err := NewRoom(testParams("room-1", "ABC123", 2, 2), testEpoch)
	require.NoError(t, err)
	room.VotedUsers["a"] = &Voter{Started: true, VotedPlayers: []int{2}}
	room.PlayerOrder = []int{1, 2, 3, 4, 5}

	c := room.Clone()
	if diff := cmp.Diff(room, c); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	c.VotedUsers["a"].VotedPlayers[0] = 5
	c.PlayerOrder[0] = 9
	assert.Equal(t, []int{2}, room.VotedUsers["a"].VotedPlayers)
	assert.Equal(t, 1, room.PlayerOrder[0])
}

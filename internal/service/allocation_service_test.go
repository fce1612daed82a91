package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateFillsFewestOccupiedFirst(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 12, 6)

	for i := 0; i < 4; i++ {
		_, _, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
		require.NoError(t, err)
	}

	rooms, err := env.rooms.ListBySession(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	// fewest-first keeps the rooms balanced
	assert.Equal(t, 2, rooms[0].ParticipantCount)
	assert.Equal(t, 2, rooms[1].ParticipantCount)
}

func TestAllocateRequiresActiveSession(t *testing.T) {
	env := newTestEnv()
	session := env.createSession(t, 10, 5)

	_, _, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	assert.Equal(t, service.CodeSessionNotActive, service.CodeOf(err))
}

func TestAllocateUnknownSession(t *testing.T) {
	env := newTestEnv()

	_, _, err := env.allocSvc.Allocate(context.Background(), uuid.New(), "guest", nil)
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestAllocateRejectsDuplicateUser(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)
	userID := uuid.New()

	_, _, err := env.allocSvc.Allocate(context.Background(), session.ID, "alice", &userID)
	require.NoError(t, err)

	_, _, err = env.allocSvc.Allocate(context.Background(), session.ID, "alice again", &userID)
	require.Error(t, err)
	assert.Equal(t, service.CodeAlreadyInSession, service.CodeOf(err))
}

func TestConcurrentAllocateNeverOverbooks(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	const joiners = 50
	var wg sync.WaitGroup
	results := make(chan error, joiners)

	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, service.KindConflict, service.KindOf(err))
	}
	assert.Equal(t, 10, succeeded)

	rooms, err := env.rooms.ListBySession(context.Background(), session.ID)
	require.NoError(t, err)
	total := 0
	for _, room := range rooms {
		assert.LessOrEqual(t, room.ParticipantCount, room.MaxParticipants)
		total += room.ParticipantCount
	}
	assert.Equal(t, 10, total)

	active, err := env.participants.CountBySession(context.Background(), session.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 10, active)
}

func TestAllocateOverflowAfterRoomClosure(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 8, 4)

	rooms, err := env.rooms.ListBySession(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	// an empty room got closed by cleanup; its capacity is reclaimable
	require.NoError(t, env.rooms.Close(context.Background(), rooms[0].ID, time.Now().UTC()))

	for i := 0; i < 4; i++ {
		_, _, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
		require.NoError(t, err)
	}

	// the remaining open room is full; the next joiner lands in an
	// overflow room capped to the session headroom
	room, _, err := env.allocSvc.Allocate(context.Background(), session.ID, "late guest", nil)
	require.NoError(t, err)
	assert.NotEqual(t, rooms[0].ID, room.ID)
	assert.NotEqual(t, rooms[1].ID, room.ID)
	assert.Equal(t, 4, room.MaxParticipants)
}

func TestCreateRoomRejectedAtAggregateCapacity(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	_, err := env.allocSvc.CreateRoom(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, service.CodeSessionFull, service.CodeOf(err))
}

func TestFindAvailableRoom(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 4, 2)

	room, err := env.allocSvc.FindAvailableRoom(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, room)

	for i := 0; i < 4; i++ {
		_, _, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
		require.NoError(t, err)
	}

	room, err = env.allocSvc.FindAvailableRoom(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Nil(t, room)
}

func TestRoomSummaries(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 4, 2)

	_, participant, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
	require.NoError(t, err)
	require.NoError(t, env.trackerSvc.MarkLeft(context.Background(), participant.ID))

	_, _, err = env.allocSvc.Allocate(context.Background(), session.ID, "second guest", nil)
	require.NoError(t, err)

	summaries, err := env.allocSvc.RoomSummaries(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	active, total := 0, 0
	for _, summary := range summaries {
		active += summary.ActiveCount
		total += summary.TotalCount
	}
	assert.Equal(t, 1, active)
	assert.Equal(t, 2, total)
}

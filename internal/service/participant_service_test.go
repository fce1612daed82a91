package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkLeftReleasesSeatOnce(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	room, participant, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
	require.NoError(t, err)

	before, err := env.rooms.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, before.ParticipantCount)

	require.NoError(t, env.trackerSvc.MarkLeft(context.Background(), participant.ID))

	after, err := env.rooms.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.ParticipantCount)

	// replaying does not double-release the seat
	require.NoError(t, env.trackerSvc.MarkLeft(context.Background(), participant.ID))

	again, err := env.rooms.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ParticipantCount)

	stored, err := env.participants.GetByID(context.Background(), participant.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Empty(t, stored.ConnectionID)
}

func TestMarkLeftToleratesClosedRoom(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	room, participant, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
	require.NoError(t, err)

	require.NoError(t, env.rooms.Close(context.Background(), room.ID, time.Now().UTC()))

	require.NoError(t, env.trackerSvc.MarkLeft(context.Background(), participant.ID))
}

func TestMarkLeftUnknownParticipant(t *testing.T) {
	env := newTestEnv()

	err := env.trackerSvc.MarkLeft(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
}

func TestAttachDetachConnection(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	_, participant, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
	require.NoError(t, err)

	require.NoError(t, env.trackerSvc.AttachConnection(context.Background(), participant.ID, "conn-1"))

	stored, err := env.participants.GetByID(context.Background(), participant.ID)
	require.NoError(t, err)
	assert.Equal(t, "conn-1", stored.ConnectionID)

	require.NoError(t, env.trackerSvc.DetachConnection(context.Background(), participant.ID))

	stored, err = env.participants.GetByID(context.Background(), participant.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ConnectionID)

	err = env.trackerSvc.AttachConnection(context.Background(), participant.ID, "")
	require.Error(t, err)
	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestTouchUpdatesLastSeen(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	_, participant, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
	require.NoError(t, err)

	before, err := env.participants.GetByID(context.Background(), participant.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, env.trackerSvc.Touch(context.Background(), participant.ID))

	after, err := env.participants.GetByID(context.Background(), participant.ID)
	require.NoError(t, err)
	assert.True(t, after.LastSeenAt.After(before.LastSeenAt))
}

func TestIsUserInSession(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)
	userID := uuid.New()

	inSession, err := env.trackerSvc.IsUserInSession(context.Background(), userID, session.ID)
	require.NoError(t, err)
	assert.False(t, inSession)

	_, participant, err := env.allocSvc.Allocate(context.Background(), session.ID, "alice", &userID)
	require.NoError(t, err)

	inSession, err = env.trackerSvc.IsUserInSession(context.Background(), userID, session.ID)
	require.NoError(t, err)
	assert.True(t, inSession)

	require.NoError(t, env.trackerSvc.MarkLeft(context.Background(), participant.ID))

	inSession, err = env.trackerSvc.IsUserInSession(context.Background(), userID, session.ID)
	require.NoError(t, err)
	assert.False(t, inSession)
}

func TestSessionOccupancy(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	_, first, err := env.allocSvc.Allocate(context.Background(), session.ID, "first", nil)
	require.NoError(t, err)
	_, _, err = env.allocSvc.Allocate(context.Background(), session.ID, "second", nil)
	require.NoError(t, err)

	require.NoError(t, env.trackerSvc.MarkLeft(context.Background(), first.ID))

	occupancy, err := env.trackerSvc.SessionOccupancy(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, occupancy.Active)
	assert.Equal(t, 2, occupancy.Total)
}

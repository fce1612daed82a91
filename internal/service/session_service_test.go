package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	sessions     *repository.InMemorySessionRepository
	rooms        *repository.InMemoryRoomRepository
	participants *repository.InMemoryParticipantRepository
	invites      *repository.InMemoryInviteRepository
	messages     *repository.InMemoryMessageRepository

	sessionSvc *service.SessionService
	allocSvc   *service.AllocationService
	trackerSvc *service.ParticipantService
	inviteSvc  *service.InviteService
	messageSvc *service.MessageService
}

func newTestEnv() *testEnv {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := service.NewCache(time.Minute)

	env := &testEnv{
		sessions:     repository.NewInMemorySessionRepository(),
		rooms:        repository.NewInMemoryRoomRepository(),
		participants: repository.NewInMemoryParticipantRepository(),
		invites:      repository.NewInMemoryInviteRepository(),
		messages:     repository.NewInMemoryMessageRepository(),
	}

	env.sessionSvc = service.NewSessionService(env.sessions, env.rooms, env.participants, cache, log)
	env.allocSvc = service.NewAllocationService(env.sessions, env.rooms, env.participants, cache, log)
	env.trackerSvc = service.NewParticipantService(env.participants, env.rooms, cache, log)
	env.inviteSvc = service.NewInviteService(env.invites, env.sessions, env.allocSvc, log)
	env.messageSvc = service.NewMessageService(env.messages, env.participants, log)

	return env
}

func (e *testEnv) createSession(t *testing.T, maxParticipants, maxPerRoom int) *domain.Session {
	t.Helper()
	session, err := e.sessionSvc.CreateSession(context.Background(), service.CreateSessionParams{
		Name:            "weekly sync",
		ScheduledStart:  time.Now().UTC().Add(time.Hour),
		Duration:        time.Hour,
		MaxParticipants: maxParticipants,
		MaxPerRoom:      maxPerRoom,
	}, uuid.New())
	require.NoError(t, err)
	return session
}

func (e *testEnv) createActiveSession(t *testing.T, maxParticipants, maxPerRoom int) *domain.Session {
	t.Helper()
	session := e.createSession(t, maxParticipants, maxPerRoom)
	started, err := e.sessionSvc.StartSession(context.Background(), session.ID)
	require.NoError(t, err)
	return started
}

func TestCreateSessionPreallocatesRooms(t *testing.T) {
	env := newTestEnv()

	session := env.createSession(t, 18, 6)

	rooms, err := env.rooms.ListBySession(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	for _, room := range rooms {
		assert.Equal(t, 6, room.MaxParticipants)
		assert.Equal(t, domain.RoomStatusActive, room.Status)
	}
}

func TestCreateSessionCapsLastRoom(t *testing.T) {
	env := newTestEnv()

	session := env.createSession(t, 10, 6)

	rooms, err := env.rooms.ListBySession(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	total := 0
	for _, room := range rooms {
		total += room.MaxParticipants
	}
	assert.Equal(t, 10, total)
}

func TestCreateSessionValidation(t *testing.T) {
	env := newTestEnv()
	valid := service.CreateSessionParams{
		Name:            "sync",
		ScheduledStart:  time.Now().Add(time.Hour),
		Duration:        time.Hour,
		MaxParticipants: 10,
		MaxPerRoom:      5,
	}

	tests := []struct {
		name   string
		mutate func(*service.CreateSessionParams)
	}{
		{"empty name", func(p *service.CreateSessionParams) { p.Name = "  " }},
		{"zero duration", func(p *service.CreateSessionParams) { p.Duration = 0 }},
		{"zero max participants", func(p *service.CreateSessionParams) { p.MaxParticipants = 0 }},
		{"zero per room", func(p *service.CreateSessionParams) { p.MaxPerRoom = 0 }},
		{"per room above max", func(p *service.CreateSessionParams) { p.MaxPerRoom = 11 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)
			_, err := env.sessionSvc.CreateSession(context.Background(), params, uuid.New())
			require.Error(t, err)
			assert.Equal(t, service.KindValidation, service.KindOf(err))
		})
	}

	t.Run("nil creator", func(t *testing.T) {
		_, err := env.sessionSvc.CreateSession(context.Background(), valid, uuid.Nil)
		require.Error(t, err)
		assert.Equal(t, service.KindValidation, service.KindOf(err))
	})
}

func TestStartSessionIdempotent(t *testing.T) {
	env := newTestEnv()
	session := env.createSession(t, 12, 6)

	first, err := env.sessionSvc.StartSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, first.Status)
	assert.False(t, first.StartedAt.IsZero())

	second, err := env.sessionSvc.StartSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, second.Status)
	assert.Equal(t, first.StartedAt, second.StartedAt)

	rooms, err := env.rooms.ListBySession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)
}

func TestStartEndedSessionConflicts(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	_, err := env.sessionSvc.EndSession(context.Background(), session.ID)
	require.NoError(t, err)

	_, err = env.sessionSvc.StartSession(context.Background(), session.ID)
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
	assert.Equal(t, service.CodeSessionNotScheduled, service.CodeOf(err))
}

func TestEndSessionReleasesParticipantsAndClosesRooms(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	var participantIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		_, participant, err := env.allocSvc.Allocate(context.Background(), session.ID, "guest", nil)
		require.NoError(t, err)
		participantIDs = append(participantIDs, participant.ID)
	}

	ended, err := env.sessionSvc.EndSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusEnded, ended.Status)
	assert.False(t, ended.EndedAt.IsZero())

	for _, id := range participantIDs {
		participant, err := env.participants.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, participant.IsActive)
		assert.False(t, participant.LeftAt.IsZero())
	}

	rooms, err := env.rooms.ListBySession(context.Background(), session.ID)
	require.NoError(t, err)
	for _, room := range rooms {
		assert.Equal(t, domain.RoomStatusClosed, room.Status)
	}

	// replaying the end is a no-op
	again, err := env.sessionSvc.EndSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, ended.EndedAt, again.EndedAt)
}

func TestCancelSessionOnlyBeforeStart(t *testing.T) {
	env := newTestEnv()

	scheduled := env.createSession(t, 10, 5)
	cancelled, err := env.sessionSvc.CancelSession(context.Background(), scheduled.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCancelled, cancelled.Status)

	active := env.createActiveSession(t, 10, 5)
	_, err = env.sessionSvc.CancelSession(context.Background(), active.ID)
	require.Error(t, err)
	assert.Equal(t, service.KindConflict, service.KindOf(err))
}

func TestGetSessionCacheInvalidatedOnTransition(t *testing.T) {
	env := newTestEnv()
	session := env.createActiveSession(t, 10, 5)

	// prime the cache
	cached, err := env.sessionSvc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, cached.Status)

	_, err = env.sessionSvc.EndSession(context.Background(), session.ID)
	require.NoError(t, err)

	fresh, err := env.sessionSvc.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusEnded, fresh.Status)
}

func TestGetSessionNotFound(t *testing.T) {
	env := newTestEnv()

	_, err := env.sessionSvc.GetSession(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))
	assert.Equal(t, service.CodeSessionNotFound, service.CodeOf(err))
}

package scheduler

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

type fixture struct {
	sessions     *repository.InMemorySessionRepository
	rooms        *repository.InMemoryRoomRepository
	participants *repository.InMemoryParticipantRepository
	invites      *repository.InMemoryInviteRepository
	messages     *repository.InMemoryMessageRepository

	sessionSvc *service.SessionService
	trackerSvc *service.ParticipantService

	scheduler *Scheduler
}

func newFixture(opts ...Option) *fixture {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := service.NewCache(time.Minute)

	f := &fixture{
		sessions:     repository.NewInMemorySessionRepository(),
		rooms:        repository.NewInMemoryRoomRepository(),
		participants: repository.NewInMemoryParticipantRepository(),
		invites:      repository.NewInMemoryInviteRepository(),
		messages:     repository.NewInMemoryMessageRepository(),
	}

	f.rooms.SetSessionLookup(func(id uuid.UUID) (domain.SessionStatus, bool) {
		session, err := f.sessions.GetByID(context.Background(), id)
		if err != nil {
			return "", false
		}
		return session.Status, true
	})
	f.messages.SetEndedSessionLookup(func(sessionID uuid.UUID, cutoff time.Time) bool {
		session, err := f.sessions.GetByID(context.Background(), sessionID)
		if err != nil {
			return false
		}
		return session.Status == domain.SessionStatusEnded && session.EndedAt.Before(cutoff)
	})

	f.sessionSvc = service.NewSessionService(f.sessions, f.rooms, f.participants, cache, log)
	f.trackerSvc = service.NewParticipantService(f.participants, f.rooms, cache, log)

	f.scheduler = New(
		f.sessionSvc,
		f.trackerSvc,
		f.sessions,
		f.rooms,
		f.participants,
		f.invites,
		f.messages,
		log,
		opts...,
	)
	return f
}

func (f *fixture) addSession(t *testing.T, status domain.SessionStatus, scheduledStart time.Time, duration time.Duration) *domain.Session {
	t.Helper()
	session := domain.NewSession("retro", scheduledStart, duration, 10, 5, uuid.New())
	session.Status = status
	if status == domain.SessionStatusActive {
		session.StartedAt = scheduledStart
	}
	require.NoError(t, f.sessions.Create(context.Background(), session))
	return session
}

func TestStartDueSessions(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	due := f.addSession(t, domain.SessionStatusScheduled, now.Add(-time.Minute), time.Hour)
	future := f.addSession(t, domain.SessionStatusScheduled, now.Add(time.Hour), time.Hour)

	require.NoError(t, f.scheduler.startDueSessions(context.Background()))

	started, err := f.sessions.GetByID(context.Background(), due.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, started.Status)

	rooms, err := f.rooms.ListBySession(context.Background(), due.ID)
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	untouched, err := f.sessions.GetByID(context.Background(), future.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusScheduled, untouched.Status)
}

func TestEndOverdueSessions(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	overdue := f.addSession(t, domain.SessionStatusActive, now.Add(-2*time.Hour), time.Hour)
	running := f.addSession(t, domain.SessionStatusActive, now.Add(-10*time.Minute), time.Hour)

	room := domain.NewRoom(overdue.ID, "Room 1", 5)
	require.NoError(t, f.rooms.Create(context.Background(), room))

	participant := domain.NewParticipant(overdue.ID, room.ID, "lingerer", nil)
	require.NoError(t, f.participants.Create(context.Background(), participant))

	require.NoError(t, f.scheduler.endOverdueSessions(context.Background()))

	ended, err := f.sessions.GetByID(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusEnded, ended.Status)

	closedRoom, err := f.rooms.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusClosed, closedRoom.Status)

	released, err := f.participants.GetByID(context.Background(), participant.ID)
	require.NoError(t, err)
	assert.False(t, released.IsActive)

	stillRunning, err := f.sessions.GetByID(context.Background(), running.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, stillRunning.Status)
}

func TestMarkIdleParticipants(t *testing.T) {
	f := newFixture(WithIdleTimeout(10 * time.Minute))
	now := time.Now().UTC()

	session := f.addSession(t, domain.SessionStatusActive, now.Add(-time.Hour), 2*time.Hour)
	room := domain.NewRoom(session.ID, "Room 1", 5)
	require.NoError(t, f.rooms.Create(context.Background(), room))
	reserved, err := f.rooms.ReserveSeat(context.Background(), room.ID)
	require.NoError(t, err)
	require.True(t, reserved)

	idle := domain.NewParticipant(session.ID, room.ID, "idle", nil)
	idle.LastSeenAt = now.Add(-30 * time.Minute)
	require.NoError(t, f.participants.Create(context.Background(), idle))

	fresh := domain.NewParticipant(session.ID, room.ID, "fresh", nil)
	require.NoError(t, f.participants.Create(context.Background(), fresh))

	require.NoError(t, f.scheduler.markIdleParticipants(context.Background()))

	pruned, err := f.participants.GetByID(context.Background(), idle.ID)
	require.NoError(t, err)
	assert.False(t, pruned.IsActive)

	kept, err := f.participants.GetByID(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsActive)

	// the pruned participant's seat was released
	updated, err := f.rooms.GetByID(context.Background(), room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.ParticipantCount)
}

func TestCloseEmptyRoomsSparesActiveSessions(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()

	active := f.addSession(t, domain.SessionStatusActive, now.Add(-time.Minute), time.Hour)
	ended := f.addSession(t, domain.SessionStatusEnded, now.Add(-2*time.Hour), time.Hour)

	activeRoom := domain.NewRoom(active.ID, "Room 1", 5)
	require.NoError(t, f.rooms.Create(context.Background(), activeRoom))
	orphanRoom := domain.NewRoom(ended.ID, "Room 1", 5)
	require.NoError(t, f.rooms.Create(context.Background(), orphanRoom))

	require.NoError(t, f.scheduler.closeEmptyRooms(context.Background()))

	kept, err := f.rooms.GetByID(context.Background(), activeRoom.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusActive, kept.Status)

	closed, err := f.rooms.GetByID(context.Background(), orphanRoom.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomStatusClosed, closed.Status)
}

func TestExpireInvites(t *testing.T) {
	f := newFixture()
	now := time.Now().UTC()
	sessionID := uuid.New()

	expired := domain.NewInvite(sessionID, "", "", time.Hour)
	expired.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, f.invites.Create(context.Background(), expired))

	live := domain.NewInvite(sessionID, "", "", time.Hour)
	require.NoError(t, f.invites.Create(context.Background(), live))

	consumed := domain.NewInvite(sessionID, "", "", time.Hour)
	require.NoError(t, f.invites.Create(context.Background(), consumed))
	ok, err := f.invites.Consume(context.Background(), consumed.Token, "guest", now)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, f.scheduler.expireInvites(context.Background()))

	_, err = f.invites.GetByToken(context.Background(), expired.Token)
	assert.ErrorIs(t, err, repository.ErrInviteNotFound)

	_, err = f.invites.GetByToken(context.Background(), live.Token)
	assert.NoError(t, err)

	// consumed invites are kept for the audit trail
	_, err = f.invites.GetByToken(context.Background(), consumed.Token)
	assert.NoError(t, err)
}

func TestArchiveOldMessages(t *testing.T) {
	f := newFixture(WithMessageRetention(24 * time.Hour))
	now := time.Now().UTC()

	old := f.addSession(t, domain.SessionStatusEnded, now.Add(-72*time.Hour), time.Hour)
	old.EndedAt = now.Add(-48 * time.Hour)
	require.NoError(t, f.sessions.Create(context.Background(), old))

	recent := f.addSession(t, domain.SessionStatusActive, now.Add(-time.Hour), 2*time.Hour)

	oldMessage := domain.NewMessage(old.ID, uuid.New(), uuid.New(), "stale")
	require.NoError(t, f.messages.Create(context.Background(), oldMessage))
	recentMessage := domain.NewMessage(recent.ID, uuid.New(), uuid.New(), "fresh")
	require.NoError(t, f.messages.Create(context.Background(), recentMessage))

	require.NoError(t, f.scheduler.archiveOldMessages(context.Background()))

	oldLeft, err := f.messages.ListByRoom(context.Background(), oldMessage.RoomID, 10)
	require.NoError(t, err)
	assert.Empty(t, oldLeft)

	recentLeft, err := f.messages.ListByRoom(context.Background(), recentMessage.RoomID, 10)
	require.NoError(t, err)
	assert.Len(t, recentLeft, 1)
}

func TestSchedulerStartStop(t *testing.T) {
	f := newFixture(WithLifecycleInterval(10*time.Millisecond), WithCleanupInterval(10*time.Millisecond))
	now := time.Now().UTC()

	due := f.addSession(t, domain.SessionStatusScheduled, now.Add(-time.Minute), time.Hour)

	f.scheduler.Start(context.Background())

	require.Eventually(t, func() bool {
		session, err := f.sessions.GetByID(context.Background(), due.ID)
		return err == nil && session.Status == domain.SessionStatusActive
	}, 2*time.Second, 10*time.Millisecond)

	f.scheduler.Stop()
}

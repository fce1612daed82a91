package gateway

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hubEnv struct {
	hub        *Hub
	sessionSvc *service.SessionService
	allocSvc   *service.AllocationService
}

func newHubEnv() *hubEnv {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cache := service.NewCache(time.Minute)

	sessions := repository.NewInMemorySessionRepository()
	rooms := repository.NewInMemoryRoomRepository()
	participants := repository.NewInMemoryParticipantRepository()
	invites := repository.NewInMemoryInviteRepository()
	messages := repository.NewInMemoryMessageRepository()

	sessionSvc := service.NewSessionService(sessions, rooms, participants, cache, log)
	allocSvc := service.NewAllocationService(sessions, rooms, participants, cache, log)
	trackerSvc := service.NewParticipantService(participants, rooms, cache, log)
	inviteSvc := service.NewInviteService(invites, sessions, allocSvc, log)
	messageSvc := service.NewMessageService(messages, participants, log)

	return &hubEnv{
		hub:        NewHub(inviteSvc, trackerSvc, messageSvc, log),
		sessionSvc: sessionSvc,
		allocSvc:   allocSvc,
	}
}

// joinClient allocates a seat and subscribes a client the way
// JoinRoomWithToken does, minus the live socket.
func (e *hubEnv) joinClient(t *testing.T, sessionID uuid.UUID) *Client {
	t.Helper()
	room, participant, err := e.allocSvc.Allocate(context.Background(), sessionID, "guest", nil)
	require.NoError(t, err)

	client := &Client{
		ParticipantID: participant.ID,
		RoomID:        room.ID,
		SessionID:     sessionID,
		DisplayName:   participant.DisplayName,
		events:        make(chan domain.RoomEvent, clientEventBuffer),
	}
	e.hub.subscribe(client)
	return client
}

func (e *hubEnv) createActiveSession(t *testing.T, maxParticipants, maxPerRoom int) *domain.Session {
	t.Helper()
	session, err := e.sessionSvc.CreateSession(context.Background(), service.CreateSessionParams{
		Name:            "standup",
		ScheduledStart:  time.Now().UTC().Add(time.Hour),
		Duration:        time.Hour,
		MaxParticipants: maxParticipants,
		MaxPerRoom:      maxPerRoom,
	}, uuid.New())
	require.NoError(t, err)
	started, err := e.sessionSvc.StartSession(context.Background(), session.ID)
	require.NoError(t, err)
	return started
}

func TestEnqueueAfterCloseDropsEvent(t *testing.T) {
	client := &Client{events: make(chan domain.RoomEvent, clientEventBuffer)}

	client.close()
	assert.False(t, client.enqueue(domain.RoomEvent{Type: domain.EventMessageReceived}))

	// repeated close is a no-op
	client.close()
}

func TestBroadcastRacingLeaveDoesNotPanic(t *testing.T) {
	env := newHubEnv()
	session := env.createActiveSession(t, 10, 5)

	clients := make([]*Client, 0, 8)
	for i := 0; i < 8; i++ {
		clients = append(clients, env.joinClient(t, session.ID))
	}
	roomID := clients[0].RoomID

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			env.hub.Broadcast(roomID, domain.RoomEvent{
				Type:   domain.EventMessageReceived,
				RoomID: roomID.String(),
			}, uuid.Nil)
		}
	}()

	for _, client := range clients {
		wg.Add(1)
		go func(client *Client) {
			defer wg.Done()
			env.hub.LeaveRoom(context.Background(), client)
		}(client)
	}
	wg.Wait()

	for _, client := range clients {
		assert.Equal(t, 0, env.hub.GroupSize(client.RoomID))
	}
}

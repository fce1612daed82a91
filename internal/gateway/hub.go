package gateway

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
	"github.com/immxrtalbeast/swarm_chat/lib/logger/sl"
)

const clientEventBuffer = 16

// Client is one websocket subscriber bound to a single room group.
type Client struct {
	ParticipantID uuid.UUID
	RoomID        uuid.UUID
	SessionID     uuid.UUID
	DisplayName   string
	ConnectionID  string

	socket *websocket.Conn

	mu     sync.Mutex
	closed bool
	events chan domain.RoomEvent
}

// enqueue and close share c.mu: a broadcast that raced a leave sees the
// closed flag instead of sending on a closed channel.
func (c *Client) enqueue(event domain.RoomEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.events <- event:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.events)
	c.mu.Unlock()

	if c.socket != nil {
		c.socket.Close()
	}
}

// Hub routes room-scoped events to subscriber groups. Messages and
// membership events are delivered only to clients of the same room; there
// is no cross-room path.
type Hub struct {
	invites  service.InviteInteractor
	tracker  service.ParticipantInteractor
	messages service.MessageInteractor
	log      *slog.Logger

	mu     sync.RWMutex
	groups map[uuid.UUID]map[uuid.UUID]*Client
}

func NewHub(invites service.InviteInteractor, tracker service.ParticipantInteractor, messages service.MessageInteractor, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		invites:  invites,
		tracker:  tracker,
		messages: messages,
		log:      log,
		groups:   make(map[uuid.UUID]map[uuid.UUID]*Client),
	}
}

// JoinRoomWithToken consumes the invite, attaches the connection and
// subscribes it to the assigned room's group. The returned client is
// already receiving events; the caller owns the read loop.
func (h *Hub) JoinRoomWithToken(ctx context.Context, conn *websocket.Conn, token, displayName string, userID *uuid.UUID) (*Client, error) {
	assignment, err := h.invites.Consume(ctx, token, displayName, userID)
	if err != nil {
		return nil, err
	}

	connectionID := uuid.New().String()
	if err := h.tracker.AttachConnection(ctx, assignment.ParticipantID, connectionID); err != nil {
		h.log.Error("failed to attach connection", sl.Err(err),
			slog.String("participant_id", assignment.ParticipantID.String()))
	}

	client := &Client{
		ParticipantID: assignment.ParticipantID,
		RoomID:        assignment.RoomID,
		SessionID:     assignment.SessionID,
		DisplayName:   assignment.DisplayName,
		ConnectionID:  connectionID,
		socket:        conn,
		events:        make(chan domain.RoomEvent, clientEventBuffer),
	}

	h.subscribe(client)
	go h.forwardEvents(client)

	h.Broadcast(client.RoomID, domain.RoomEvent{
		Type:     domain.EventParticipantJoined,
		RoomID:   client.RoomID.String(),
		SenderID: client.ParticipantID.String(),
		Payload: map[string]any{
			"participant_id": client.ParticipantID.String(),
			"display_name":   client.DisplayName,
		},
	}, client.ParticipantID)

	h.log.Info("client joined room",
		"room_id", client.RoomID,
		"participant_id", client.ParticipantID,
	)
	return client, nil
}

// SendMessage persists the message and broadcasts it to the room group,
// including the sender.
func (h *Hub) SendMessage(ctx context.Context, client *Client, content string) (*domain.Message, error) {
	message, err := h.messages.SendMessage(ctx, client.RoomID, client.ParticipantID, content)
	if err != nil {
		return nil, err
	}

	h.Broadcast(client.RoomID, domain.RoomEvent{
		Type:     domain.EventMessageReceived,
		RoomID:   client.RoomID.String(),
		SenderID: client.ParticipantID.String(),
		Payload: map[string]any{
			"id":      message.ID.String(),
			"sender":  client.DisplayName,
			"content": message.Content,
			"sent_at": message.SentAt.UTC().Format(time.RFC3339Nano),
		},
	}, uuid.Nil)

	return message, nil
}

// LeaveRoom marks the participant left, unsubscribes the client and
// notifies the remaining group members.
func (h *Hub) LeaveRoom(ctx context.Context, client *Client) {
	h.unsubscribe(client)

	if err := h.tracker.MarkLeft(ctx, client.ParticipantID); err != nil {
		h.log.Error("failed to mark participant left", sl.Err(err),
			slog.String("participant_id", client.ParticipantID.String()))
	}

	h.Broadcast(client.RoomID, domain.RoomEvent{
		Type:     domain.EventParticipantLeft,
		RoomID:   client.RoomID.String(),
		SenderID: client.ParticipantID.String(),
		Payload: map[string]any{
			"participant_id": client.ParticipantID.String(),
		},
	}, client.ParticipantID)

	client.close()

	h.log.Info("client left room",
		"room_id", client.RoomID,
		"participant_id", client.ParticipantID,
	)
}

// Touch refreshes the participant's activity clock; called from the read
// loop on every inbound frame.
func (h *Hub) Touch(ctx context.Context, client *Client) {
	if err := h.tracker.Touch(ctx, client.ParticipantID); err != nil {
		h.log.Debug("touch failed", sl.Err(err),
			slog.String("participant_id", client.ParticipantID.String()))
	}
}

// Broadcast delivers an event to every subscriber of the room group except
// the excluded participant (uuid.Nil excludes nobody). Slow clients drop
// events instead of blocking the group.
func (h *Hub) Broadcast(roomID uuid.UUID, event domain.RoomEvent, exclude uuid.UUID) {
	h.mu.RLock()
	group := h.groups[roomID]
	clients := make([]*Client, 0, len(group))
	for id, client := range group {
		if id == exclude {
			continue
		}
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if !client.enqueue(event) {
			h.log.Debug("dropping room event",
				slog.String("participant_id", client.ParticipantID.String()),
				slog.String("type", event.Type),
			)
		}
	}
}

// GroupSize reports the current number of subscribers in a room group.
func (h *Hub) GroupSize(roomID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[roomID])
}

func (h *Hub) subscribe(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[client.RoomID]
	if !ok {
		group = make(map[uuid.UUID]*Client)
		h.groups[client.RoomID] = group
	}
	group[client.ParticipantID] = client
}

func (h *Hub) unsubscribe(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[client.RoomID]
	if !ok {
		return
	}
	delete(group, client.ParticipantID)
	if len(group) == 0 {
		delete(h.groups, client.RoomID)
	}
}

func (h *Hub) forwardEvents(client *Client) {
	for event := range client.events {
		if client.socket == nil {
			return
		}
		if err := client.socket.WriteJSON(event); err != nil {
			return
		}
	}
}

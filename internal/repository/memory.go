package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
)

// In-memory repositories mirror the postgres semantics, including the
// conditional updates, so service tests exercise the same contracts.

type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.Session
}

func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{sessions: make(map[uuid.UUID]domain.Session)}
}

func (r *InMemorySessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[session.ID] = *session
	return nil
}

func (r *InMemorySessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (r *InMemorySessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		s := session
		result = append(result, &s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledStart.Before(result[j].ScheduledStart)
	})
	return result, nil
}

func (r *InMemorySessionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok || session.Status != from {
		return false, nil
	}

	session.Status = to
	switch to {
	case domain.SessionStatusActive:
		session.StartedAt = at.UTC()
	case domain.SessionStatusEnded:
		session.EndedAt = at.UTC()
	}
	r.sessions[id] = session
	return true, nil
}

func (r *InMemorySessionRepository) ListDueToStart(ctx context.Context, now time.Time) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Session
	for _, session := range r.sessions {
		if session.DueToStart(now) {
			s := session
			result = append(result, &s)
		}
	}
	return result, nil
}

func (r *InMemorySessionRepository) ListDueToEnd(ctx context.Context, now time.Time) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Session
	for _, session := range r.sessions {
		if session.DueToEnd(now) {
			s := session
			result = append(result, &s)
		}
	}
	return result, nil
}

type InMemoryRoomRepository struct {
	mu            sync.RWMutex
	rooms         map[uuid.UUID]domain.Room
	sessionStatus func(uuid.UUID) (domain.SessionStatus, bool)
}

func NewInMemoryRoomRepository() *InMemoryRoomRepository {
	return &InMemoryRoomRepository{rooms: make(map[uuid.UUID]domain.Room)}
}

// SetSessionLookup wires session status resolution for ListIdleEmpty; the
// postgres implementation gets this via a join.
func (r *InMemoryRoomRepository) SetSessionLookup(fn func(uuid.UUID) (domain.SessionStatus, bool)) {
	r.sessionStatus = fn
}

func (r *InMemoryRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[room.ID] = *room
	return nil
}

func (r *InMemoryRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return &room, nil
}

func (r *InMemoryRoomRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Room
	for _, room := range r.rooms {
		if room.SessionID == sessionID {
			rm := room
			result = append(result, &rm)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRoomRepository) ListOpenBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Room
	for _, room := range r.rooms {
		if room.SessionID == sessionID && room.Status != domain.RoomStatusClosed {
			rm := room
			result = append(result, &rm)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].ParticipantCount != result[j].ParticipantCount {
			return result[i].ParticipantCount < result[j].ParticipantCount
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryRoomRepository) ReserveSeat(ctx context.Context, roomID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok || room.Status != domain.RoomStatusActive || room.ParticipantCount >= room.MaxParticipants {
		return false, nil
	}

	room.ParticipantCount++
	room.Status = domain.StatusForCount(room.ParticipantCount, room.MaxParticipants)
	r.rooms[roomID] = room
	return true, nil
}

func (r *InMemoryRoomRepository) ReleaseSeat(ctx context.Context, roomID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok || room.Status == domain.RoomStatusClosed {
		return ErrRoomNotFound
	}

	if room.ParticipantCount > 0 {
		room.ParticipantCount--
	}
	room.Status = domain.StatusForCount(room.ParticipantCount, room.MaxParticipants)
	r.rooms[roomID] = room
	return nil
}

func (r *InMemoryRoomRepository) Close(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok || room.Status == domain.RoomStatusClosed {
		return nil
	}

	room.Status = domain.RoomStatusClosed
	room.ClosedAt = at.UTC()
	r.rooms[roomID] = room
	return nil
}

// ListIdleEmpty needs session status, which this repository does not
// track; the sessions repository is threaded in by the constructor wiring
// in tests via SetSessionLookup.
func (r *InMemoryRoomRepository) ListIdleEmpty(ctx context.Context) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Room
	for _, room := range r.rooms {
		if room.Status != domain.RoomStatusClosed && room.ParticipantCount == 0 {
			if r.sessionStatus != nil {
				if status, ok := r.sessionStatus(room.SessionID); ok && status == domain.SessionStatusActive {
					continue
				}
			}
			rm := room
			result = append(result, &rm)
		}
	}
	return result, nil
}

type InMemoryParticipantRepository struct {
	mu           sync.RWMutex
	participants map[uuid.UUID]domain.Participant
}

func NewInMemoryParticipantRepository() *InMemoryParticipantRepository {
	return &InMemoryParticipantRepository{participants: make(map[uuid.UUID]domain.Participant)}
}

func (r *InMemoryParticipantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.participants[participant.ID] = *participant
	return nil
}

func (r *InMemoryParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	participant, ok := r.participants[id]
	if !ok {
		return nil, ErrParticipantNotFound
	}
	return &participant, nil
}

func (r *InMemoryParticipantRepository) HasActiveUser(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.participants {
		if p.IsActive && p.SessionID == sessionID && p.UserID != nil && *p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryParticipantRepository) MarkLeft(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[id]
	if !ok || !participant.IsActive {
		return false, nil
	}

	participant.IsActive = false
	participant.LeftAt = at.UTC()
	participant.ConnectionID = ""
	r.participants[id] = participant
	return true, nil
}

func (r *InMemoryParticipantRepository) SetConnection(ctx context.Context, id uuid.UUID, connectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[id]
	if !ok {
		return ErrParticipantNotFound
	}

	participant.ConnectionID = connectionID
	r.participants[id] = participant
	return nil
}

func (r *InMemoryParticipantRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.participants[id]
	if !ok {
		return ErrParticipantNotFound
	}

	participant.LastSeenAt = at.UTC()
	r.participants[id] = participant
	return nil
}

func (r *InMemoryParticipantRepository) CountByRoom(ctx context.Context, roomID uuid.UUID, activeOnly bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.participants {
		if p.RoomID != roomID {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		count++
	}
	return count, nil
}

func (r *InMemoryParticipantRepository) CountBySession(ctx context.Context, sessionID uuid.UUID, activeOnly bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, p := range r.participants {
		if p.SessionID != sessionID {
			continue
		}
		if activeOnly && !p.IsActive {
			continue
		}
		count++
	}
	return count, nil
}

func (r *InMemoryParticipantRepository) ListActiveBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Participant
	for _, p := range r.participants {
		if p.SessionID == sessionID && p.IsActive {
			participant := p
			result = append(result, &participant)
		}
	}
	return result, nil
}

func (r *InMemoryParticipantRepository) ListIdleSince(ctx context.Context, cutoff time.Time) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Participant
	for _, p := range r.participants {
		if p.IsActive && p.LastSeenAt.Before(cutoff) {
			participant := p
			result = append(result, &participant)
		}
	}
	return result, nil
}

type InMemoryInviteRepository struct {
	mu      sync.RWMutex
	invites map[string]domain.Invite
}

func NewInMemoryInviteRepository() *InMemoryInviteRepository {
	return &InMemoryInviteRepository{invites: make(map[string]domain.Invite)}
}

func (r *InMemoryInviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invites[invite.Token]; ok {
		return ErrInviteTokenExists
	}
	r.invites[invite.Token] = *invite
	return nil
}

func (r *InMemoryInviteRepository) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	invite, ok := r.invites[token]
	if !ok {
		return nil, ErrInviteNotFound
	}
	return &invite, nil
}

func (r *InMemoryInviteRepository) Consume(ctx context.Context, token, consumedBy string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	invite, ok := r.invites[token]
	if !ok || invite.Consumed || !at.UTC().Before(invite.ExpiresAt) {
		return false, nil
	}

	invite.Consumed = true
	invite.ConsumedBy = consumedBy
	invite.ConsumedAt = at.UTC()
	r.invites[token] = invite
	return true, nil
}

func (r *InMemoryInviteRepository) Unconsume(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	invite, ok := r.invites[token]
	if !ok || !invite.Consumed {
		return ErrInviteNotFound
	}

	invite.Consumed = false
	invite.ConsumedBy = ""
	invite.ConsumedAt = time.Time{}
	r.invites[token] = invite
	return nil
}

func (r *InMemoryInviteRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Invite
	for _, invite := range r.invites {
		if invite.SessionID == sessionID {
			inv := invite
			result = append(result, &inv)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryInviteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for token, invite := range r.invites {
		if !invite.Consumed && !now.UTC().Before(invite.ExpiresAt) {
			delete(r.invites, token)
			removed++
		}
	}
	return removed, nil
}

type InMemoryMessageRepository struct {
	mu          sync.RWMutex
	messages    map[uuid.UUID]domain.Message
	externals   map[string]uuid.UUID
	endedBefore func(sessionID uuid.UUID, cutoff time.Time) bool
}

func NewInMemoryMessageRepository() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{
		messages:  make(map[uuid.UUID]domain.Message),
		externals: make(map[string]uuid.UUID),
	}
}

// SetEndedSessionLookup wires session end-time resolution for
// PurgeForSessionsEndedBefore; the postgres implementation uses a subquery.
func (r *InMemoryMessageRepository) SetEndedSessionLookup(fn func(sessionID uuid.UUID, cutoff time.Time) bool) {
	r.endedBefore = fn
}

func (r *InMemoryMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if message.ExternalID != "" {
		if _, ok := r.externals[message.ExternalID]; ok {
			return ErrDuplicateMessage
		}
		r.externals[message.ExternalID] = message.ID
	}
	r.messages[message.ID] = *message
	return nil
}

func (r *InMemoryMessageRepository) ListByRoom(ctx context.Context, roomID uuid.UUID, limit int) ([]*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*domain.Message
	for _, message := range r.messages {
		if message.RoomID == roomID && !message.IsDeleted {
			msg := message
			result = append(result, &msg)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SentAt.After(result[j].SentAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryMessageRepository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	message, ok := r.messages[id]
	if !ok {
		return ErrMessageNotFound
	}

	message.IsDeleted = true
	r.messages[id] = message
	return nil
}

// PurgeForSessionsEndedBefore relies on the caller passing ended session
// ids via SetEndedSessionLookup; see scheduler tests.
func (r *InMemoryMessageRepository) PurgeForSessionsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.endedBefore == nil {
		return 0, nil
	}

	var removed int64
	for id, message := range r.messages {
		if r.endedBefore(message.SessionID, cutoff) {
			if message.ExternalID != "" {
				delete(r.externals, message.ExternalID)
			}
			delete(r.messages, id)
			removed++
		}
	}
	return removed, nil
}

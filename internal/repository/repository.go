package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
)

type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	List(ctx context.Context) ([]*domain.Session, error)
	// TransitionStatus applies a status change only when the stored status
	// still equals from; reports whether the row was updated. This is the
	// idempotency guard for lifecycle transitions.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus, at time.Time) (bool, error)
	ListDueToStart(ctx context.Context, now time.Time) ([]*domain.Session, error)
	ListDueToEnd(ctx context.Context, now time.Time) ([]*domain.Session, error)
}

type RoomRepository interface {
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Room, error)
	// ListOpenBySession returns non-closed rooms ordered by occupancy
	// ascending, then creation time ascending.
	ListOpenBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Room, error)
	// ReserveSeat atomically increments the room occupancy if and only if
	// the live count is below capacity, recomputing the room status in the
	// same conditional update. Reports whether the seat was taken.
	ReserveSeat(ctx context.Context, roomID uuid.UUID) (bool, error)
	// ReleaseSeat is the inverse of ReserveSeat with a zero floor.
	ReleaseSeat(ctx context.Context, roomID uuid.UUID) error
	Close(ctx context.Context, roomID uuid.UUID, at time.Time) error
	// ListIdleEmpty returns open rooms with zero occupants whose owning
	// session is no longer active.
	ListIdleEmpty(ctx context.Context) ([]*domain.Room, error)
}

type ParticipantRepository interface {
	Create(ctx context.Context, participant *domain.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	HasActiveUser(ctx context.Context, userID, sessionID uuid.UUID) (bool, error)
	// MarkLeft deactivates the participant; reports false when it had
	// already left, so callers stay idempotent.
	MarkLeft(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	SetConnection(ctx context.Context, id uuid.UUID, connectionID string) error
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	CountByRoom(ctx context.Context, roomID uuid.UUID, activeOnly bool) (int, error)
	CountBySession(ctx context.Context, sessionID uuid.UUID, activeOnly bool) (int, error)
	ListActiveBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Participant, error)
	ListIdleSince(ctx context.Context, cutoff time.Time) ([]*domain.Participant, error)
}

type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	GetByToken(ctx context.Context, token string) (*domain.Invite, error)
	// Consume flips the consumed flag false -> true only when the invite is
	// unconsumed and unexpired; under concurrent calls on one token exactly
	// one caller observes true.
	Consume(ctx context.Context, token, consumedBy string, at time.Time) (bool, error)
	// Unconsume rolls a consumption back after a failed allocation.
	Unconsume(ctx context.Context, token string) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Invite, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	ListByRoom(ctx context.Context, roomID uuid.UUID, limit int) ([]*domain.Message, error)
	MarkDeleted(ctx context.Context, id uuid.UUID) error
	PurgeForSessionsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
)

type CreateSessionParams struct {
	Name            string
	ScheduledStart  time.Time
	Duration        time.Duration
	MaxParticipants int
	MaxPerRoom      int
}

type SessionInteractor interface {
	CreateSession(ctx context.Context, params CreateSessionParams, createdBy uuid.UUID) (*domain.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	ListSessions(ctx context.Context) ([]*domain.Session, error)
	StartSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	EndSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	CancelSession(ctx context.Context, id uuid.UUID) (*domain.Session, error)
}

type AllocationInteractor interface {
	// FindAvailableRoom returns the open room with the fewest occupants,
	// or nil when every room is full.
	FindAvailableRoom(ctx context.Context, sessionID uuid.UUID) (*domain.Room, error)
	Allocate(ctx context.Context, sessionID uuid.UUID, displayName string, userID *uuid.UUID) (*domain.Room, *domain.Participant, error)
	CreateRoom(ctx context.Context, sessionID uuid.UUID) (*domain.Room, error)
	RoomSummaries(ctx context.Context, sessionID uuid.UUID) ([]RoomSummary, error)
}

type RoomSummary struct {
	Room        *domain.Room
	ActiveCount int
	TotalCount  int
}

type ValidationResult struct {
	Valid     bool
	Reason    string
	SessionID uuid.UUID
	ExpiresAt time.Time
}

type RoomAssignment struct {
	SessionID     uuid.UUID
	RoomID        uuid.UUID
	ParticipantID uuid.UUID
	DisplayName   string
}

type BulkRecipient struct {
	Email string
	Name  string
}

type BulkIssueResult struct {
	Recipient BulkRecipient
	Invite    *domain.Invite
	Err       error
}

type InviteInteractor interface {
	Issue(ctx context.Context, sessionID uuid.UUID, inviteeEmail, inviteeName string, ttl time.Duration) (*domain.Invite, error)
	IssueBulk(ctx context.Context, sessionID uuid.UUID, recipients []BulkRecipient, ttl time.Duration) []BulkIssueResult
	Validate(ctx context.Context, token string) (*ValidationResult, error)
	Consume(ctx context.Context, token, displayName string, userID *uuid.UUID) (*RoomAssignment, error)
	ListSessionInvites(ctx context.Context, sessionID uuid.UUID) ([]*domain.Invite, error)
}

type Occupancy struct {
	Active int
	Total  int
}

type ParticipantInteractor interface {
	GetParticipant(ctx context.Context, id uuid.UUID) (*domain.Participant, error)
	AttachConnection(ctx context.Context, participantID uuid.UUID, connectionID string) error
	DetachConnection(ctx context.Context, participantID uuid.UUID) error
	MarkLeft(ctx context.Context, participantID uuid.UUID) error
	Touch(ctx context.Context, participantID uuid.UUID) error
	IsUserInSession(ctx context.Context, userID, sessionID uuid.UUID) (bool, error)
	RoomOccupancy(ctx context.Context, roomID uuid.UUID) (Occupancy, error)
	SessionOccupancy(ctx context.Context, sessionID uuid.UUID) (Occupancy, error)
}

type MessageInteractor interface {
	SendMessage(ctx context.Context, roomID, participantID uuid.UUID, content string) (*domain.Message, error)
	// IngestMessage persists a system-originated message idempotently
	// keyed by externalID; replays return the stored duplicate error.
	IngestMessage(ctx context.Context, roomID, participantID uuid.UUID, content, externalID string) (*domain.Message, error)
	ListRoomMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]*domain.Message, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) error
}

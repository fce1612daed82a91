package domain

import (
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	RoomStatusActive RoomStatus = "active"
	RoomStatusFull   RoomStatus = "full"
	RoomStatusClosed RoomStatus = "closed"
)

// Room is a capacity-bounded sub-chat of a session. ParticipantCount is
// authoritative only in the store; in-memory copies are snapshots.
type Room struct {
	ID               uuid.UUID
	SessionID        uuid.UUID
	Name             string
	ParticipantCount int
	MaxParticipants  int
	Status           RoomStatus
	CreatedAt        time.Time
	ClosedAt         time.Time
}

func NewRoom(sessionID uuid.UUID, name string, maxParticipants int) *Room {
	return &Room{
		ID:              uuid.New(),
		SessionID:       sessionID,
		Name:            name,
		MaxParticipants: maxParticipants,
		Status:          RoomStatusActive,
		CreatedAt:       time.Now().UTC(),
	}
}

func (r *Room) HasCapacity() bool {
	return r.Status == RoomStatusActive && r.ParticipantCount < r.MaxParticipants
}

// StatusForCount derives the room status from an occupancy count.
func StatusForCount(count, max int) RoomStatus {
	if count >= max {
		return RoomStatusFull
	}
	return RoomStatusActive
}

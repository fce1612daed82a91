package domain

import (
	"time"

	"github.com/google/uuid"
)

type ParticipantType string

const (
	ParticipantTypeRegistered ParticipantType = "registered"
	ParticipantTypeGuest      ParticipantType = "guest"
	ParticipantTypeBot        ParticipantType = "bot"
	ParticipantTypeModerator  ParticipantType = "moderator"
)

// Participant is a session/room member. UserID is set only for registered
// users and moderators; guests and bots are anonymous.
type Participant struct {
	ID           uuid.UUID
	RoomID       uuid.UUID
	SessionID    uuid.UUID
	UserID       *uuid.UUID
	DisplayName  string
	ConnectionID string
	Type         ParticipantType
	IsActive     bool
	JoinedAt     time.Time
	LastSeenAt   time.Time
	LeftAt       time.Time
}

func NewParticipant(sessionID, roomID uuid.UUID, displayName string, userID *uuid.UUID) *Participant {
	now := time.Now().UTC()
	kind := ParticipantTypeGuest
	if userID != nil {
		kind = ParticipantTypeRegistered
	}
	return &Participant{
		ID:          uuid.New(),
		RoomID:      roomID,
		SessionID:   sessionID,
		UserID:      userID,
		DisplayName: displayName,
		Type:        kind,
		IsActive:    true,
		JoinedAt:    now,
		LastSeenAt:  now,
	}
}

func NewBotParticipant(sessionID, roomID uuid.UUID, displayName string) *Participant {
	p := NewParticipant(sessionID, roomID, displayName, nil)
	p.Type = ParticipantTypeBot
	return p
}

// IdleSince reports whether the participant has been inactive longer
// than the given threshold.
func (p *Participant) IdleSince(now time.Time, threshold time.Duration) bool {
	return p.IsActive && now.Sub(p.LastSeenAt) > threshold
}

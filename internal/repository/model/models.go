package model

import (
	"time"

	"github.com/google/uuid"
)

type Session struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name            string    `gorm:"size:255;not null"`
	ScheduledStart  time.Time `gorm:"not null;index"`
	DurationSeconds int64     `gorm:"not null"`
	MaxParticipants int       `gorm:"not null"`
	MaxPerRoom      int       `gorm:"not null"`
	Status          string    `gorm:"size:32;not null;index"`
	CreatedBy       uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt       time.Time `gorm:"not null"`
	StartedAt       *time.Time
	EndedAt         *time.Time
	Rooms           []Room   `gorm:"constraint:OnDelete:CASCADE"`
	Invites         []Invite `gorm:"constraint:OnDelete:CASCADE"`
}

type Room struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	SessionID        uuid.UUID `gorm:"type:uuid;not null;index:idx_rooms_session_status"`
	Name             string    `gorm:"size:255;not null"`
	ParticipantCount int       `gorm:"not null;default:0"`
	MaxParticipants  int       `gorm:"not null"`
	Status           string    `gorm:"size:32;not null;index:idx_rooms_session_status"`
	CreatedAt        time.Time `gorm:"not null"`
	ClosedAt         *time.Time
}

type Participant struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RoomID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_participants_room_active"`
	SessionID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	DisplayName  string     `gorm:"size:255;not null"`
	ConnectionID string     `gorm:"size:64"`
	Type         string     `gorm:"size:32;not null"`
	IsActive     bool       `gorm:"not null;index:idx_participants_room_active"`
	JoinedAt     time.Time  `gorm:"not null"`
	LastSeenAt   time.Time  `gorm:"not null"`
	LeftAt       *time.Time
}

type Invite struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Token        string    `gorm:"size:64;uniqueIndex;not null"`
	SessionID    uuid.UUID `gorm:"type:uuid;not null;index"`
	InviteeEmail string    `gorm:"size:255"`
	InviteeName  string    `gorm:"size:255"`
	Consumed     bool      `gorm:"not null;default:false"`
	ConsumedBy   string    `gorm:"size:255"`
	CreatedAt    time.Time `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
	ConsumedAt   *time.Time
}

type Message struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID        uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_room_sent"`
	SessionID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ParticipantID uuid.UUID `gorm:"type:uuid;not null"`
	Content       string    `gorm:"type:text;not null"`
	ExternalID    *string   `gorm:"size:128;uniqueIndex:idx_messages_external,where:external_id IS NOT NULL"`
	IsDeleted     bool      `gorm:"not null;default:false"`
	SentAt        time.Time `gorm:"not null;index:idx_messages_room_sent"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

const MaxMessageLength = 4000

// Message is immutable once stored except for the soft-delete flag.
// ExternalID carries a correlation id for idempotent system-originated
// ingestion; empty for user messages.
type Message struct {
	ID            uuid.UUID
	RoomID        uuid.UUID
	SessionID     uuid.UUID
	ParticipantID uuid.UUID
	Content       string
	ExternalID    string
	IsDeleted     bool
	SentAt        time.Time
}

func NewMessage(sessionID, roomID, participantID uuid.UUID, content string) *Message {
	return &Message{
		ID:            uuid.New(),
		RoomID:        roomID,
		SessionID:     sessionID,
		ParticipantID: participantID,
		Content:       content,
		SentAt:        time.Now().UTC(),
	}
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusEnded     SessionStatus = "ended"
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Session is a scheduled chat event split across capacity-bounded rooms.
type Session struct {
	ID              uuid.UUID
	Name            string
	ScheduledStart  time.Time
	Duration        time.Duration
	MaxParticipants int
	MaxPerRoom      int
	Status          SessionStatus
	CreatedBy       uuid.UUID
	CreatedAt       time.Time
	StartedAt       time.Time
	EndedAt         time.Time
}

func NewSession(name string, scheduledStart time.Time, duration time.Duration, maxParticipants, maxPerRoom int, createdBy uuid.UUID) *Session {
	return &Session{
		ID:              uuid.New(),
		Name:            name,
		ScheduledStart:  scheduledStart.UTC(),
		Duration:        duration,
		MaxParticipants: maxParticipants,
		MaxPerRoom:      maxPerRoom,
		Status:          SessionStatusScheduled,
		CreatedBy:       createdBy,
		CreatedAt:       time.Now().UTC(),
	}
}

// RoomsNeeded is the number of rooms pre-created for the session,
// ceil(MaxParticipants / MaxPerRoom).
func (s *Session) RoomsNeeded() int {
	if s.MaxPerRoom <= 0 {
		return 0
	}
	return (s.MaxParticipants + s.MaxPerRoom - 1) / s.MaxPerRoom
}

// DueToStart reports whether a scheduled session should be activated.
func (s *Session) DueToStart(now time.Time) bool {
	return s.Status == SessionStatusScheduled && !now.Before(s.ScheduledStart)
}

// DueToEnd reports whether an active session has run past its duration.
func (s *Session) DueToEnd(now time.Time) bool {
	if s.Status != SessionStatusActive || s.StartedAt.IsZero() {
		return false
	}
	return now.After(s.StartedAt.Add(s.Duration))
}

func (s *Session) IsTerminal() bool {
	return s.Status == SessionStatusEnded || s.Status == SessionStatusCancelled
}

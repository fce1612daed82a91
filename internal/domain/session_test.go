package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoomsNeeded(t *testing.T) {
	tests := []struct {
		maxParticipants int
		maxPerRoom      int
		want            int
	}{
		{18, 6, 3},
		{10, 6, 2},
		{6, 6, 1},
		{1, 6, 1},
		{7, 6, 2},
		{100, 10, 10},
		{5, 0, 0},
	}

	for _, tt := range tests {
		session := Session{MaxParticipants: tt.maxParticipants, MaxPerRoom: tt.maxPerRoom}
		assert.Equal(t, tt.want, session.RoomsNeeded(), "%d participants, %d per room", tt.maxParticipants, tt.maxPerRoom)
	}
}

func TestSessionDueToStart(t *testing.T) {
	now := time.Now().UTC()
	session := NewSession("standup", now.Add(-time.Minute), time.Hour, 10, 5, uuid.New())

	assert.True(t, session.DueToStart(now))

	session.ScheduledStart = now.Add(time.Minute)
	assert.False(t, session.DueToStart(now))

	session.ScheduledStart = now.Add(-time.Minute)
	session.Status = SessionStatusActive
	assert.False(t, session.DueToStart(now))
}

func TestSessionDueToEnd(t *testing.T) {
	now := time.Now().UTC()
	session := NewSession("standup", now, time.Hour, 10, 5, uuid.New())

	// not started yet
	assert.False(t, session.DueToEnd(now))

	session.Status = SessionStatusActive
	session.StartedAt = now.Add(-2 * time.Hour)
	assert.True(t, session.DueToEnd(now))

	session.StartedAt = now.Add(-30 * time.Minute)
	assert.False(t, session.DueToEnd(now))
}

func TestSessionIsTerminal(t *testing.T) {
	session := NewSession("standup", time.Now(), time.Hour, 10, 5, uuid.New())
	assert.False(t, session.IsTerminal())

	session.Status = SessionStatusEnded
	assert.True(t, session.IsTerminal())

	session.Status = SessionStatusCancelled
	assert.True(t, session.IsTerminal())
}

func TestStatusForCount(t *testing.T) {
	assert.Equal(t, RoomStatusActive, StatusForCount(0, 5))
	assert.Equal(t, RoomStatusActive, StatusForCount(4, 5))
	assert.Equal(t, RoomStatusFull, StatusForCount(5, 5))
	assert.Equal(t, RoomStatusFull, StatusForCount(6, 5))
}

package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
)

type SessionResponse struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	ScheduledStart  time.Time  `json:"scheduled_start"`
	DurationMinutes int        `json:"duration_minutes"`
	MaxParticipants int        `json:"max_participants"`
	MaxPerRoom      int        `json:"max_participants_per_room"`
	Status          string     `json:"status"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
}

func SessionToApi(s *domain.Session) *SessionResponse {
	resp := &SessionResponse{
		ID:              s.ID,
		Name:            s.Name,
		ScheduledStart:  s.ScheduledStart,
		DurationMinutes: int(s.Duration.Minutes()),
		MaxParticipants: s.MaxParticipants,
		MaxPerRoom:      s.MaxPerRoom,
		Status:          string(s.Status),
		CreatedBy:       s.CreatedBy,
		CreatedAt:       s.CreatedAt,
	}
	if !s.StartedAt.IsZero() {
		t := s.StartedAt
		resp.StartedAt = &t
	}
	if !s.EndedAt.IsZero() {
		t := s.EndedAt
		resp.EndedAt = &t
	}
	return resp
}

type RoomResponse struct {
	ID               uuid.UUID `json:"id"`
	SessionID        uuid.UUID `json:"session_id"`
	Name             string    `json:"name"`
	ParticipantCount int       `json:"participant_count"`
	MaxParticipants  int       `json:"max_participants"`
	Status           string    `json:"status"`
	ActiveCount      int       `json:"active_count"`
	TotalCount       int       `json:"total_count"`
	CreatedAt        time.Time `json:"created_at"`
}

func RoomSummaryToApi(s service.RoomSummary) *RoomResponse {
	return &RoomResponse{
		ID:               s.Room.ID,
		SessionID:        s.Room.SessionID,
		Name:             s.Room.Name,
		ParticipantCount: s.Room.ParticipantCount,
		MaxParticipants:  s.Room.MaxParticipants,
		Status:           string(s.Room.Status),
		ActiveCount:      s.ActiveCount,
		TotalCount:       s.TotalCount,
		CreatedAt:        s.Room.CreatedAt,
	}
}

type InviteResponse struct {
	ID           uuid.UUID `json:"id"`
	Token        string    `json:"token"`
	SessionID    uuid.UUID `json:"session_id"`
	InviteeEmail string    `json:"invitee_email,omitempty"`
	InviteeName  string    `json:"invitee_name,omitempty"`
	Consumed     bool      `json:"consumed"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func InviteToApi(i *domain.Invite) *InviteResponse {
	return &InviteResponse{
		ID:           i.ID,
		Token:        i.Token,
		SessionID:    i.SessionID,
		InviteeEmail: i.InviteeEmail,
		InviteeName:  i.InviteeName,
		Consumed:     i.Consumed,
		CreatedAt:    i.CreatedAt,
		ExpiresAt:    i.ExpiresAt,
	}
}

type MessageResponse struct {
	ID            uuid.UUID `json:"id"`
	RoomID        uuid.UUID `json:"room_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Content       string    `json:"content"`
	SentAt        time.Time `json:"sent_at"`
}

func MessageToApi(m *domain.Message) *MessageResponse {
	return &MessageResponse{
		ID:            m.ID,
		RoomID:        m.RoomID,
		ParticipantID: m.ParticipantID,
		Content:       m.Content,
		SentAt:        m.SentAt,
	}
}

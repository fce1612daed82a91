package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/lib/logger/sl"
)

// SessionService owns the session state machine:
// scheduled --start--> active --end--> ended, scheduled --cancel--> cancelled.
// Transitions are guarded by a conditional status update in the store, so a
// replayed transition returns the already-applied result without repeating
// side effects.
type SessionService struct {
	sessions     repository.SessionRepository
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	cache        *Cache
	log          *slog.Logger
}

func NewSessionService(sessions repository.SessionRepository, rooms repository.RoomRepository, participants repository.ParticipantRepository, cache *Cache, log *slog.Logger) *SessionService {
	if log == nil {
		log = slog.Default()
	}
	return &SessionService{
		sessions:     sessions,
		rooms:        rooms,
		participants: participants,
		cache:        cache,
		log:          log,
	}
}

func (s *SessionService) CreateSession(ctx context.Context, params CreateSessionParams, createdBy uuid.UUID) (*domain.Session, error) {
	const op = "service.session.create"
	log := s.log.With(slog.String("op", op))

	if strings.TrimSpace(params.Name) == "" {
		return nil, Validation("name", "session name is required")
	}
	if params.Duration <= 0 {
		return nil, Validation("duration", "duration must be positive")
	}
	if params.MaxParticipants <= 0 {
		return nil, Validation("maxParticipants", "max participants must be positive")
	}
	if params.MaxPerRoom <= 0 {
		return nil, Validation("maxParticipantsPerRoom", "max participants per room must be positive")
	}
	if params.MaxPerRoom > params.MaxParticipants {
		return nil, Validation("maxParticipantsPerRoom", "per-room limit cannot exceed max participants")
	}
	if createdBy == uuid.Nil {
		return nil, Validation("createdBy", "creator is required")
	}

	session := domain.NewSession(params.Name, params.ScheduledStart, params.Duration, params.MaxParticipants, params.MaxPerRoom, createdBy)
	if err := s.sessions.Create(ctx, session); err != nil {
		log.Error("failed to persist session", sl.Err(err))
		return nil, Transient(err)
	}

	if err := s.ensureRooms(ctx, session); err != nil {
		log.Error("room pre-allocation failed", sl.Err(err), slog.String("session_id", session.ID.String()))
		return nil, err
	}

	log.Info("session created",
		"session_id", session.ID,
		"name", session.Name,
		"rooms", session.RoomsNeeded(),
		"scheduled_start", session.ScheduledStart,
	)
	return session, nil
}

func (s *SessionService) GetSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if cached, ok := s.cache.Get(sessionCacheKey(id)); ok {
		if session, ok := cached.(*domain.Session); ok {
			return session, nil
		}
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, NotFound(CodeSessionNotFound, "session not found")
		}
		return nil, Transient(err)
	}

	s.cache.Set(sessionCacheKey(id), session)
	return session, nil
}

func (s *SessionService) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, Transient(err)
	}
	return sessions, nil
}

// StartSession activates a scheduled session. Repeating the call on an
// already-active session returns it unchanged.
func (s *SessionService) StartSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	const op = "service.session.start"
	log := s.log.With(slog.String("op", op), slog.String("session_id", id.String()))

	applied, err := s.sessions.TransitionStatus(ctx, id, domain.SessionStatusScheduled, domain.SessionStatusActive, time.Now().UTC())
	if err != nil {
		return nil, Transient(err)
	}

	s.cache.Delete(sessionCacheKey(id))

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, NotFound(CodeSessionNotFound, "session not found")
		}
		return nil, Transient(err)
	}

	if !applied {
		if session.Status == domain.SessionStatusActive {
			return session, nil
		}
		return nil, Conflict(CodeSessionNotScheduled, "session is "+string(session.Status)+", not scheduled")
	}

	if err := s.ensureRooms(ctx, session); err != nil {
		log.Error("room pre-allocation failed", sl.Err(err))
		return nil, err
	}

	log.Info("session started", "started_at", session.StartedAt)
	return session, nil
}

// EndSession closes an active session, closes its rooms and marks every
// active participant as left. Idempotent for already-ended sessions.
func (s *SessionService) EndSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	const op = "service.session.end"
	log := s.log.With(slog.String("op", op), slog.String("session_id", id.String()))

	now := time.Now().UTC()
	applied, err := s.sessions.TransitionStatus(ctx, id, domain.SessionStatusActive, domain.SessionStatusEnded, now)
	if err != nil {
		return nil, Transient(err)
	}

	s.cache.Delete(sessionCacheKey(id))

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, NotFound(CodeSessionNotFound, "session not found")
		}
		return nil, Transient(err)
	}

	if !applied {
		if session.Status == domain.SessionStatusEnded {
			return session, nil
		}
		return nil, Conflict(CodeSessionNotActive, "session is "+string(session.Status)+", not active")
	}

	if err := s.closeRooms(ctx, id, now); err != nil {
		log.Error("failed to close rooms", sl.Err(err))
		return nil, err
	}

	participants, err := s.participants.ListActiveBySession(ctx, id)
	if err != nil {
		return nil, Transient(err)
	}
	for _, p := range participants {
		if _, err := s.participants.MarkLeft(ctx, p.ID, now); err != nil {
			log.Error("failed to mark participant left", sl.Err(err), slog.String("participant_id", p.ID.String()))
			return nil, Transient(err)
		}
		s.cache.Delete(participantCacheKey(p.ID))
	}

	log.Info("session ended", "ended_at", session.EndedAt, "participants_released", len(participants))
	return session, nil
}

// CancelSession is permitted only before start.
func (s *SessionService) CancelSession(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	const op = "service.session.cancel"
	log := s.log.With(slog.String("op", op), slog.String("session_id", id.String()))

	now := time.Now().UTC()
	applied, err := s.sessions.TransitionStatus(ctx, id, domain.SessionStatusScheduled, domain.SessionStatusCancelled, now)
	if err != nil {
		return nil, Transient(err)
	}

	s.cache.Delete(sessionCacheKey(id))

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, NotFound(CodeSessionNotFound, "session not found")
		}
		return nil, Transient(err)
	}

	if !applied {
		if session.Status == domain.SessionStatusCancelled {
			return session, nil
		}
		return nil, Conflict(CodeSessionNotScheduled, "session is "+string(session.Status)+", cannot cancel after start")
	}

	if err := s.closeRooms(ctx, id, now); err != nil {
		log.Error("failed to close rooms", sl.Err(err))
		return nil, err
	}

	log.Info("session cancelled")
	return session, nil
}

// ensureRooms tops the session up to its pre-allocated room count. Safe to
// replay: it only creates the shortfall. The last room is sized down so the
// aggregate capacity never exceeds the session limit.
func (s *SessionService) ensureRooms(ctx context.Context, session *domain.Session) error {
	existing, err := s.rooms.ListBySession(ctx, session.ID)
	if err != nil {
		return Transient(err)
	}

	needed := session.RoomsNeeded()
	for i := len(existing); i < needed; i++ {
		size := session.MaxPerRoom
		if remaining := session.MaxParticipants - i*session.MaxPerRoom; size > remaining {
			size = remaining
		}
		room := domain.NewRoom(session.ID, fmt.Sprintf("Room %d", i+1), size)
		if err := s.rooms.Create(ctx, room); err != nil {
			return Transient(err)
		}
	}
	return nil
}

func (s *SessionService) closeRooms(ctx context.Context, sessionID uuid.UUID, at time.Time) error {
	rooms, err := s.rooms.ListBySession(ctx, sessionID)
	if err != nil {
		return Transient(err)
	}
	for _, room := range rooms {
		if room.Status == domain.RoomStatusClosed {
			continue
		}
		if err := s.rooms.Close(ctx, room.ID, at); err != nil {
			return Transient(err)
		}
	}
	return nil
}

func sessionCacheKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func participantCacheKey(id uuid.UUID) string {
	return "participant:" + id.String()
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/lib/logger/sl"
)

// ParticipantService tracks connect/disconnect lifecycle and active-state
// bookkeeping. Occupancy counts go through the TTL cache for dashboards;
// the allocation engine never reads them from here.
type ParticipantService struct {
	participants repository.ParticipantRepository
	rooms        repository.RoomRepository
	cache        *Cache
	log          *slog.Logger
}

func NewParticipantService(participants repository.ParticipantRepository, rooms repository.RoomRepository, cache *Cache, log *slog.Logger) *ParticipantService {
	if log == nil {
		log = slog.Default()
	}
	return &ParticipantService{
		participants: participants,
		rooms:        rooms,
		cache:        cache,
		log:          log,
	}
}

func (s *ParticipantService) GetParticipant(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	participant, err := s.participants.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, NotFound(CodeParticipantNotFound, "participant not found")
		}
		return nil, Transient(err)
	}
	return participant, nil
}

func (s *ParticipantService) AttachConnection(ctx context.Context, participantID uuid.UUID, connectionID string) error {
	if connectionID == "" {
		return Validation("connectionId", "connection id is required")
	}

	if err := s.participants.SetConnection(ctx, participantID, connectionID); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return NotFound(CodeParticipantNotFound, "participant not found")
		}
		return Transient(err)
	}

	s.cache.Delete(participantCacheKey(participantID))
	return nil
}

func (s *ParticipantService) DetachConnection(ctx context.Context, participantID uuid.UUID) error {
	if err := s.participants.SetConnection(ctx, participantID, ""); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return NotFound(CodeParticipantNotFound, "participant not found")
		}
		return Transient(err)
	}

	s.cache.Delete(participantCacheKey(participantID))
	return nil
}

// MarkLeft deactivates the participant and releases their room seat.
// Replaying the call on a departed participant is a no-op.
func (s *ParticipantService) MarkLeft(ctx context.Context, participantID uuid.UUID) error {
	const op = "service.participant.markLeft"
	log := s.log.With(slog.String("op", op), slog.String("participant_id", participantID.String()))

	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return NotFound(CodeParticipantNotFound, "participant not found")
		}
		return Transient(err)
	}

	marked, err := s.participants.MarkLeft(ctx, participantID, time.Now().UTC())
	if err != nil {
		return Transient(err)
	}
	if !marked {
		// already left
		return nil
	}

	if err := s.rooms.ReleaseSeat(ctx, participant.RoomID); err != nil {
		if !errors.Is(err, repository.ErrRoomNotFound) {
			log.Error("failed to release seat", sl.Err(err), slog.String("room_id", participant.RoomID.String()))
			return Transient(err)
		}
		// room already closed; nothing to release
	}

	s.cache.Delete(participantCacheKey(participantID))
	s.cache.Delete(roomCacheKey(participant.RoomID))

	log.Info("participant left", "room_id", participant.RoomID)
	return nil
}

func (s *ParticipantService) Touch(ctx context.Context, participantID uuid.UUID) error {
	if err := s.participants.Touch(ctx, participantID, time.Now().UTC()); err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return NotFound(CodeParticipantNotFound, "participant not found")
		}
		return Transient(err)
	}
	return nil
}

// IsUserInSession reports whether the user already has an active
// participant in the session, guarding against duplicate memberships.
func (s *ParticipantService) IsUserInSession(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	inSession, err := s.participants.HasActiveUser(ctx, userID, sessionID)
	if err != nil {
		return false, Transient(err)
	}
	return inSession, nil
}

func (s *ParticipantService) RoomOccupancy(ctx context.Context, roomID uuid.UUID) (Occupancy, error) {
	key := "occupancy:room:" + roomID.String()
	if cached, ok := s.cache.Get(key); ok {
		if occupancy, ok := cached.(Occupancy); ok {
			return occupancy, nil
		}
	}

	active, err := s.participants.CountByRoom(ctx, roomID, true)
	if err != nil {
		return Occupancy{}, Transient(err)
	}
	total, err := s.participants.CountByRoom(ctx, roomID, false)
	if err != nil {
		return Occupancy{}, Transient(err)
	}

	occupancy := Occupancy{Active: active, Total: total}
	s.cache.Set(key, occupancy)
	return occupancy, nil
}

func (s *ParticipantService) SessionOccupancy(ctx context.Context, sessionID uuid.UUID) (Occupancy, error) {
	key := "occupancy:session:" + sessionID.String()
	if cached, ok := s.cache.Get(key); ok {
		if occupancy, ok := cached.(Occupancy); ok {
			return occupancy, nil
		}
	}

	active, err := s.participants.CountBySession(ctx, sessionID, true)
	if err != nil {
		return Occupancy{}, Transient(err)
	}
	total, err := s.participants.CountBySession(ctx, sessionID, false)
	if err != nil {
		return Occupancy{}, Transient(err)
	}

	occupancy := Occupancy{Active: active, Total: total}
	s.cache.Set(key, occupancy)
	return occupancy, nil
}

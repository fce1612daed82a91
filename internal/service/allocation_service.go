package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/lib/logger/sl"
)

// allocateAttempts bounds the reserve/retry loop under heavy contention.
// Each pass re-reads the open room list, so losing a seat race costs one
// iteration, not a failure.
const allocateAttempts = 3

// AllocationService distributes joining participants across rooms. The
// capacity check lives inside the store's conditional seat update, never in
// application memory, so concurrent joiners cannot overbook a room.
//
// Overflow policy: when every open room is full, a new room is created as
// long as the session still has aggregate capacity; otherwise the session
// is full and the caller gets a conflict.
type AllocationService struct {
	sessions     repository.SessionRepository
	rooms        repository.RoomRepository
	participants repository.ParticipantRepository
	cache        *Cache
	log          *slog.Logger
}

func NewAllocationService(sessions repository.SessionRepository, rooms repository.RoomRepository, participants repository.ParticipantRepository, cache *Cache, log *slog.Logger) *AllocationService {
	if log == nil {
		log = slog.Default()
	}
	return &AllocationService{
		sessions:     sessions,
		rooms:        rooms,
		participants: participants,
		cache:        cache,
		log:          log,
	}
}

// FindAvailableRoom returns the open room with the fewest occupants,
// tie-broken by earliest creation. Nil when every room is full.
func (s *AllocationService) FindAvailableRoom(ctx context.Context, sessionID uuid.UUID) (*domain.Room, error) {
	rooms, err := s.rooms.ListOpenBySession(ctx, sessionID)
	if err != nil {
		return nil, Transient(err)
	}

	for _, room := range rooms {
		if room.HasCapacity() {
			return room, nil
		}
	}
	return nil, nil
}

func (s *AllocationService) Allocate(ctx context.Context, sessionID uuid.UUID, displayName string, userID *uuid.UUID) (*domain.Room, *domain.Participant, error) {
	const op = "service.allocation.allocate"
	log := s.log.With(slog.String("op", op), slog.String("session_id", sessionID.String()))

	if displayName == "" {
		return nil, nil, Validation("displayName", "display name is required")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, nil, NotFound(CodeSessionNotFound, "session not found")
		}
		return nil, nil, Transient(err)
	}
	if session.Status != domain.SessionStatusActive {
		return nil, nil, Conflict(CodeSessionNotActive, "session is "+string(session.Status)+", not accepting joins")
	}

	if userID != nil {
		inSession, err := s.participants.HasActiveUser(ctx, *userID, sessionID)
		if err != nil {
			return nil, nil, Transient(err)
		}
		if inSession {
			return nil, nil, Conflict(CodeAlreadyInSession, "user already has an active participant in this session")
		}
	}

	for attempt := 0; attempt < allocateAttempts; attempt++ {
		rooms, err := s.rooms.ListOpenBySession(ctx, sessionID)
		if err != nil {
			return nil, nil, Transient(err)
		}

		for _, room := range rooms {
			if !room.HasCapacity() {
				continue
			}

			reserved, err := s.rooms.ReserveSeat(ctx, room.ID)
			if err != nil {
				return nil, nil, Transient(err)
			}
			if !reserved {
				// lost the seat race, try the next-best room
				continue
			}

			participant, err := s.commitParticipant(ctx, session, room, displayName, userID)
			if err != nil {
				return nil, nil, err
			}

			log.Info("participant allocated",
				"room_id", room.ID,
				"participant_id", participant.ID,
				"attempt", attempt+1,
			)
			return room, participant, nil
		}

		// All listed rooms full: create an overflow room if aggregate
		// capacity remains, then loop to race for one of its seats.
		overflow, err := s.CreateRoom(ctx, sessionID)
		if err != nil {
			return nil, nil, err
		}

		reserved, err := s.rooms.ReserveSeat(ctx, overflow.ID)
		if err != nil {
			return nil, nil, Transient(err)
		}
		if !reserved {
			continue
		}

		participant, err := s.commitParticipant(ctx, session, overflow, displayName, userID)
		if err != nil {
			return nil, nil, err
		}

		log.Info("participant allocated to overflow room",
			"room_id", overflow.ID,
			"participant_id", participant.ID,
		)
		return overflow, participant, nil
	}

	return nil, nil, Conflict(CodeRoomFull, "no room seat could be reserved")
}

// commitParticipant creates the participant row for a reserved seat,
// releasing the seat if the write fails.
func (s *AllocationService) commitParticipant(ctx context.Context, session *domain.Session, room *domain.Room, displayName string, userID *uuid.UUID) (*domain.Participant, error) {
	participant := domain.NewParticipant(session.ID, room.ID, displayName, userID)
	if err := s.participants.Create(ctx, participant); err != nil {
		if releaseErr := s.rooms.ReleaseSeat(ctx, room.ID); releaseErr != nil {
			s.log.Error("failed to release seat after participant write failure",
				sl.Err(releaseErr), slog.String("room_id", room.ID.String()))
		}
		return nil, Transient(err)
	}

	s.cache.Delete(sessionCacheKey(session.ID))
	s.cache.Delete(roomCacheKey(room.ID))
	return participant, nil
}

// CreateRoom adds a room to an active session, capping its size so the
// session's aggregate capacity is never exceeded.
func (s *AllocationService) CreateRoom(ctx context.Context, sessionID uuid.UUID) (*domain.Room, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, NotFound(CodeSessionNotFound, "session not found")
		}
		return nil, Transient(err)
	}
	if session.IsTerminal() {
		return nil, Conflict(CodeSessionNotActive, "session is "+string(session.Status))
	}

	open, err := s.rooms.ListOpenBySession(ctx, sessionID)
	if err != nil {
		return nil, Transient(err)
	}

	openCapacity := 0
	for _, room := range open {
		openCapacity += room.MaxParticipants
	}

	headroom := session.MaxParticipants - openCapacity
	if headroom <= 0 {
		return nil, Conflict(CodeSessionFull, "session is at aggregate capacity")
	}

	size := session.MaxPerRoom
	if size > headroom {
		size = headroom
	}

	room := domain.NewRoom(sessionID, fmt.Sprintf("Room %d", len(open)+1), size)
	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, Transient(err)
	}

	s.log.Info("overflow room created",
		"session_id", sessionID,
		"room_id", room.ID,
		"capacity", size,
	)
	return room, nil
}

func (s *AllocationService) RoomSummaries(ctx context.Context, sessionID uuid.UUID) ([]RoomSummary, error) {
	rooms, err := s.rooms.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, Transient(err)
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		active, err := s.participants.CountByRoom(ctx, room.ID, true)
		if err != nil {
			return nil, Transient(err)
		}
		total, err := s.participants.CountByRoom(ctx, room.ID, false)
		if err != nil {
			return nil, Transient(err)
		}
		summaries = append(summaries, RoomSummary{Room: room, ActiveCount: active, TotalCount: total})
	}
	return summaries, nil
}

func roomCacheKey(id uuid.UUID) string {
	return "room:" + id.String()
}

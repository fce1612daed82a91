package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/lib/logger/sl"
)

type MessageService struct {
	messages     repository.MessageRepository
	participants repository.ParticipantRepository
	log          *slog.Logger
}

func NewMessageService(messages repository.MessageRepository, participants repository.ParticipantRepository, log *slog.Logger) *MessageService {
	if log == nil {
		log = slog.Default()
	}
	return &MessageService{
		messages:     messages,
		participants: participants,
		log:          log,
	}
}

func (s *MessageService) SendMessage(ctx context.Context, roomID, participantID uuid.UUID, content string) (*domain.Message, error) {
	return s.persist(ctx, roomID, participantID, content, "")
}

func (s *MessageService) IngestMessage(ctx context.Context, roomID, participantID uuid.UUID, content, externalID string) (*domain.Message, error) {
	if strings.TrimSpace(externalID) == "" {
		return nil, Validation("externalId", "external id is required")
	}
	return s.persist(ctx, roomID, participantID, content, strings.TrimSpace(externalID))
}

func (s *MessageService) persist(ctx context.Context, roomID, participantID uuid.UUID, content, externalID string) (*domain.Message, error) {
	const op = "service.message.persist"

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, Validation("content", "message content is required")
	}
	if utf8.RuneCountInString(content) > domain.MaxMessageLength {
		return nil, Validation("content", "message content is too long")
	}

	participant, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		if errors.Is(err, repository.ErrParticipantNotFound) {
			return nil, NotFound(CodeParticipantNotFound, "participant not found")
		}
		return nil, Transient(err)
	}
	if !participant.IsActive {
		return nil, Conflict(CodeParticipantNotFound, "participant has left the session")
	}
	if participant.RoomID != roomID {
		// messages never cross room boundaries
		return nil, Conflict(CodeRoomNotFound, "participant does not belong to this room")
	}

	message := domain.NewMessage(participant.SessionID, roomID, participantID, content)
	message.ExternalID = externalID
	if err := s.messages.Create(ctx, message); err != nil {
		if errors.Is(err, repository.ErrDuplicateMessage) {
			return nil, Conflict(CodeDuplicateMessage, "message with this external id already ingested")
		}
		s.log.Error("failed to persist message", slog.String("op", op), sl.Err(err))
		return nil, Transient(err)
	}

	if err := s.participants.Touch(ctx, participantID, time.Now().UTC()); err != nil {
		s.log.Warn("failed to touch participant", slog.String("op", op), sl.Err(err))
	}

	return message, nil
}

func (s *MessageService) ListRoomMessages(ctx context.Context, roomID uuid.UUID, limit int) ([]*domain.Message, error) {
	messages, err := s.messages.ListByRoom(ctx, roomID, limit)
	if err != nil {
		return nil, Transient(err)
	}
	return messages, nil
}

func (s *MessageService) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	if err := s.messages.MarkDeleted(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			return NotFound(CodeMessageNotFound, "message not found")
		}
		return Transient(err)
	}
	return nil
}

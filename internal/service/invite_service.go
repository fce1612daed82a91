package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/lib/logger/sl"
)

const (
	ReasonValid       = "valid"
	ReasonNotFound    = "not_found"
	ReasonAlreadyUsed = "already_used"
	ReasonExpired     = "expired"
	ReasonBadFormat   = "bad_format"
)

// InviteService issues, validates and consumes single-use tokens.
// Consumption is linearizable per token: the consumed flag flips through a
// conditional store update, so exactly one of N concurrent consumers wins.
type InviteService struct {
	invites   repository.InviteRepository
	sessions  repository.SessionRepository
	allocator AllocationInteractor
	log       *slog.Logger
}

func NewInviteService(invites repository.InviteRepository, sessions repository.SessionRepository, allocator AllocationInteractor, log *slog.Logger) *InviteService {
	if log == nil {
		log = slog.Default()
	}
	return &InviteService{
		invites:   invites,
		sessions:  sessions,
		allocator: allocator,
		log:       log,
	}
}

func (s *InviteService) Issue(ctx context.Context, sessionID uuid.UUID, inviteeEmail, inviteeName string, ttl time.Duration) (*domain.Invite, error) {
	const op = "service.invite.issue"
	log := s.log.With(slog.String("op", op), slog.String("session_id", sessionID.String()))

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, NotFound(CodeSessionNotFound, "session not found")
		}
		return nil, Transient(err)
	}
	if session.IsTerminal() {
		return nil, Conflict(CodeSessionNotActive, "cannot issue invites for a "+string(session.Status)+" session")
	}

	// token collisions are vanishingly rare; regenerate like the room
	// link loop rather than failing the request
	for {
		invite := domain.NewInvite(sessionID, strings.TrimSpace(inviteeEmail), strings.TrimSpace(inviteeName), ttl)
		if err := s.invites.Create(ctx, invite); err != nil {
			if errors.Is(err, repository.ErrInviteTokenExists) {
				continue
			}
			log.Error("failed to persist invite", sl.Err(err))
			return nil, Transient(err)
		}

		log.Info("invite issued", "invite_id", invite.ID, "expires_at", invite.ExpiresAt)
		return invite, nil
	}
}

// IssueBulk creates one invite per recipient; individual failures are
// reported in the result slice without aborting the batch.
func (s *InviteService) IssueBulk(ctx context.Context, sessionID uuid.UUID, recipients []BulkRecipient, ttl time.Duration) []BulkIssueResult {
	results := make([]BulkIssueResult, 0, len(recipients))
	for _, recipient := range recipients {
		invite, err := s.Issue(ctx, sessionID, recipient.Email, recipient.Name, ttl)
		results = append(results, BulkIssueResult{Recipient: recipient, Invite: invite, Err: err})
	}
	return results
}

// Validate inspects a token with no side effects.
func (s *InviteService) Validate(ctx context.Context, token string) (*ValidationResult, error) {
	if !domain.ValidTokenFormat(token) {
		return &ValidationResult{Valid: false, Reason: ReasonBadFormat}, nil
	}

	invite, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return &ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		return nil, Transient(err)
	}

	result := &ValidationResult{SessionID: invite.SessionID, ExpiresAt: invite.ExpiresAt}
	switch {
	case invite.Consumed:
		result.Reason = ReasonAlreadyUsed
	case invite.IsExpired():
		result.Reason = ReasonExpired
	default:
		result.Valid = true
		result.Reason = ReasonValid
	}
	return result, nil
}

// Consume atomically claims the token and delegates to the allocation
// engine. A failed allocation rolls the consumption back so the token is
// not burned by, say, a session that has not started yet.
func (s *InviteService) Consume(ctx context.Context, token, displayName string, userID *uuid.UUID) (*RoomAssignment, error) {
	const op = "service.invite.consume"
	log := s.log.With(slog.String("op", op))

	if !domain.ValidTokenFormat(token) {
		return nil, ValidationCode(CodeInvalidCodeFormat, "inviteCode", "invite code must be at least 32 url-safe characters")
	}
	if strings.TrimSpace(displayName) == "" {
		return nil, Validation("displayName", "display name is required")
	}

	consumed, err := s.invites.Consume(ctx, token, displayName, time.Now().UTC())
	if err != nil {
		return nil, Transient(err)
	}
	if !consumed {
		return nil, s.consumeFailureReason(ctx, token)
	}

	invite, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		return nil, Transient(err)
	}

	room, participant, err := s.allocator.Allocate(ctx, invite.SessionID, strings.TrimSpace(displayName), userID)
	if err != nil {
		if rbErr := s.invites.Unconsume(ctx, token); rbErr != nil {
			log.Error("failed to roll back invite consumption", sl.Err(rbErr), slog.String("invite_id", invite.ID.String()))
		}
		return nil, err
	}

	log.Info("invite consumed",
		"invite_id", invite.ID,
		"session_id", invite.SessionID,
		"room_id", room.ID,
		"participant_id", participant.ID,
	)
	return &RoomAssignment{
		SessionID:     invite.SessionID,
		RoomID:        room.ID,
		ParticipantID: participant.ID,
		DisplayName:   participant.DisplayName,
	}, nil
}

func (s *InviteService) ListSessionInvites(ctx context.Context, sessionID uuid.UUID) ([]*domain.Invite, error) {
	invites, err := s.invites.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, Transient(err)
	}
	return invites, nil
}

func (s *InviteService) consumeFailureReason(ctx context.Context, token string) error {
	invite, err := s.invites.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrInviteNotFound) {
			return NotFound(CodeInviteNotFound, "invite not found")
		}
		return Transient(err)
	}
	if invite.Consumed {
		return Conflict(CodeInviteAlreadyUsed, "invite has already been used")
	}
	return Conflict(CodeInviteExpired, "invite has expired")
}

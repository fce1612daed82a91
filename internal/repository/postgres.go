package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/swarm_chat/internal/domain"
	"github.com/immxrtalbeast/swarm_chat/internal/repository/model"
	"gorm.io/gorm"
)

type PostgresSessionRepository struct {
	db *gorm.DB
}

func NewPostgresSessionRepository(db *gorm.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

func (r *PostgresSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if session == nil {
		return errors.New("session is nil")
	}

	return r.db.WithContext(ctx).Create(toModelSession(session)).Error
}

func (r *PostgresSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session model.Session
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return toDomainSession(&session), nil
}

func (r *PostgresSessionRepository) List(ctx context.Context) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []model.Session
	if err := r.db.WithContext(ctx).Order("scheduled_start").Find(&sessions).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Session, 0, len(sessions))
	for i := range sessions {
		result = append(result, toDomainSession(&sessions[i]))
	}
	return result, nil
}

func (r *PostgresSessionRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.SessionStatus, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	updates := map[string]any{"status": string(to)}
	switch to {
	case domain.SessionStatusActive:
		updates["started_at"] = at.UTC()
	case domain.SessionStatusEnded:
		updates["ended_at"] = at.UTC()
	}

	res := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresSessionRepository) ListDueToStart(ctx context.Context, now time.Time) ([]*domain.Session, error) {
	return r.listByStatusAndTime(ctx, domain.SessionStatusScheduled, "scheduled_start <= ?", now)
}

func (r *PostgresSessionRepository) ListDueToEnd(ctx context.Context, now time.Time) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Where("status = ? AND started_at IS NOT NULL AND started_at + (duration_seconds * interval '1 second') < ?",
			string(domain.SessionStatusActive), now.UTC()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Session, 0, len(sessions))
	for i := range sessions {
		result = append(result, toDomainSession(&sessions[i]))
	}
	return result, nil
}

func (r *PostgresSessionRepository) listByStatusAndTime(ctx context.Context, status domain.SessionStatus, cond string, now time.Time) ([]*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sessions []model.Session
	err := r.db.WithContext(ctx).
		Where("status = ?", string(status)).
		Where(cond, now.UTC()).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Session, 0, len(sessions))
	for i := range sessions {
		result = append(result, toDomainSession(&sessions[i]))
	}
	return result, nil
}

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewPostgresRoomRepository(db *gorm.DB) *PostgresRoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if room == nil {
		return errors.New("room is nil")
	}

	return r.db.WithContext(ctx).Create(toModelRoom(room)).Error
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var room model.Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}

	return toDomainRoom(&room), nil
}

func (r *PostgresRoomRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	return toDomainRooms(rooms), nil
}

func (r *PostgresRoomRepository) ListOpenBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND status <> ?", sessionID, string(domain.RoomStatusClosed)).
		Order("participant_count, created_at").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	return toDomainRooms(rooms), nil
}

// ReserveSeat is the overbooking guard: the WHERE clause re-checks the live
// count inside the UPDATE itself, so two concurrent joiners can never both
// take the last seat.
func (r *PostgresRoomRepository) ReserveSeat(ctx context.Context, roomID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	res := r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ? AND status = ? AND participant_count < max_participants",
			roomID, string(domain.RoomStatusActive)).
		Updates(map[string]any{
			"participant_count": gorm.Expr("participant_count + 1"),
			"status": gorm.Expr("CASE WHEN participant_count + 1 >= max_participants THEN ? ELSE ? END",
				string(domain.RoomStatusFull), string(domain.RoomStatusActive)),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresRoomRepository) ReleaseSeat(ctx context.Context, roomID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ? AND status <> ?", roomID, string(domain.RoomStatusClosed)).
		Updates(map[string]any{
			"participant_count": gorm.Expr("GREATEST(participant_count - 1, 0)"),
			"status": gorm.Expr("CASE WHEN participant_count - 1 < max_participants THEN ? ELSE ? END",
				string(domain.RoomStatusActive), string(domain.RoomStatusFull)),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) Close(ctx context.Context, roomID uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	closedAt := at.UTC()
	res := r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ? AND status <> ?", roomID, string(domain.RoomStatusClosed)).
		Updates(map[string]any{
			"status":    string(domain.RoomStatusClosed),
			"closed_at": closedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	return nil
}

func (r *PostgresRoomRepository) ListIdleEmpty(ctx context.Context) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Joins("JOIN sessions ON sessions.id = rooms.session_id").
		Where("rooms.status <> ? AND rooms.participant_count = 0 AND sessions.status <> ?",
			string(domain.RoomStatusClosed), string(domain.SessionStatusActive)).
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}

	return toDomainRooms(rooms), nil
}

type PostgresParticipantRepository struct {
	db *gorm.DB
}

func NewPostgresParticipantRepository(db *gorm.DB) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{db: db}
}

func (r *PostgresParticipantRepository) Create(ctx context.Context, participant *domain.Participant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if participant == nil {
		return errors.New("participant is nil")
	}

	return r.db.WithContext(ctx).Create(toModelParticipant(participant)).Error
}

func (r *PostgresParticipantRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var participant model.Participant
	err := r.db.WithContext(ctx).First(&participant, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}

	return toDomainParticipant(&participant), nil
}

func (r *PostgresParticipantRepository) HasActiveUser(ctx context.Context, userID, sessionID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("user_id = ? AND session_id = ? AND is_active = true", userID, sessionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresParticipantRepository) MarkLeft(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	leftAt := at.UTC()
	res := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("id = ? AND is_active = true", id).
		Updates(map[string]any{
			"is_active":     false,
			"left_at":       leftAt,
			"connection_id": "",
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresParticipantRepository) SetConnection(ctx context.Context, id uuid.UUID, connectionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("id = ?", id).
		Update("connection_id", connectionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *PostgresParticipantRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&model.Participant{}).
		Where("id = ?", id).
		Update("last_seen_at", at.UTC()).Error
}

func (r *PostgresParticipantRepository) CountByRoom(ctx context.Context, roomID uuid.UUID, activeOnly bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	q := r.db.WithContext(ctx).Model(&model.Participant{}).Where("room_id = ?", roomID)
	if activeOnly {
		q = q.Where("is_active = true")
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *PostgresParticipantRepository) CountBySession(ctx context.Context, sessionID uuid.UUID, activeOnly bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	q := r.db.WithContext(ctx).Model(&model.Participant{}).Where("session_id = ?", sessionID)
	if activeOnly {
		q = q.Where("is_active = true")
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *PostgresParticipantRepository) ListActiveBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var participants []model.Participant
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND is_active = true", sessionID).
		Find(&participants).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Participant, 0, len(participants))
	for i := range participants {
		result = append(result, toDomainParticipant(&participants[i]))
	}
	return result, nil
}

func (r *PostgresParticipantRepository) ListIdleSince(ctx context.Context, cutoff time.Time) ([]*domain.Participant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var participants []model.Participant
	err := r.db.WithContext(ctx).
		Where("is_active = true AND last_seen_at < ?", cutoff.UTC()).
		Find(&participants).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Participant, 0, len(participants))
	for i := range participants {
		result = append(result, toDomainParticipant(&participants[i]))
	}
	return result, nil
}

type PostgresInviteRepository struct {
	db *gorm.DB
}

func NewPostgresInviteRepository(db *gorm.DB) *PostgresInviteRepository {
	return &PostgresInviteRepository{db: db}
}

func (r *PostgresInviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if invite == nil {
		return errors.New("invite is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelInvite(invite)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrInviteTokenExists
		}
		return err
	}
	return nil
}

func (r *PostgresInviteRepository) GetByToken(ctx context.Context, token string) (*domain.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var invite model.Invite
	err := r.db.WithContext(ctx).First(&invite, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}

	return toDomainInvite(&invite), nil
}

// Consume is linearizable per token: the consumed check lives in the WHERE
// clause of the UPDATE, so exactly one of N concurrent callers wins.
func (r *PostgresInviteRepository) Consume(ctx context.Context, token, consumedBy string, at time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	consumedAt := at.UTC()
	res := r.db.WithContext(ctx).Model(&model.Invite{}).
		Where("token = ? AND consumed = false AND expires_at > ?", token, consumedAt).
		Updates(map[string]any{
			"consumed":    true,
			"consumed_by": consumedBy,
			"consumed_at": consumedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PostgresInviteRepository) Unconsume(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.Invite{}).
		Where("token = ? AND consumed = true", token).
		Updates(map[string]any{
			"consumed":    false,
			"consumed_by": "",
			"consumed_at": gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInviteNotFound
	}
	return nil
}

func (r *PostgresInviteRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*domain.Invite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var invites []model.Invite
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at").
		Find(&invites).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Invite, 0, len(invites))
	for i := range invites {
		result = append(result, toDomainInvite(&invites[i]))
	}
	return result, nil
}

func (r *PostgresInviteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	res := r.db.WithContext(ctx).
		Where("consumed = false AND expires_at <= ?", now.UTC()).
		Delete(&model.Invite{})
	return res.RowsAffected, res.Error
}

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewPostgresMessageRepository(db *gorm.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if message == nil {
		return errors.New("message is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelMessage(message)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateMessage
		}
		return err
	}
	return nil
}

func (r *PostgresMessageRepository) ListByRoom(ctx context.Context, roomID uuid.UUID, limit int) ([]*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).
		Where("room_id = ? AND is_deleted = false", roomID).
		Order("sent_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var messages []model.Message
	if err := q.Find(&messages).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Message, 0, len(messages))
	for i := range messages {
		result = append(result, toDomainMessage(&messages[i]))
	}
	return result, nil
}

func (r *PostgresMessageRepository) MarkDeleted(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("id = ?", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) PurgeForSessionsEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	sub := r.db.Model(&model.Session{}).
		Select("id").
		Where("status = ? AND ended_at < ?", string(domain.SessionStatusEnded), cutoff.UTC())

	res := r.db.WithContext(ctx).
		Where("session_id IN (?)", sub).
		Delete(&model.Message{})
	return res.RowsAffected, res.Error
}

func toModelSession(s *domain.Session) *model.Session {
	var startedAt, endedAt *time.Time
	if !s.StartedAt.IsZero() {
		t := s.StartedAt.UTC()
		startedAt = &t
	}
	if !s.EndedAt.IsZero() {
		t := s.EndedAt.UTC()
		endedAt = &t
	}

	return &model.Session{
		ID:              s.ID,
		Name:            s.Name,
		ScheduledStart:  s.ScheduledStart.UTC(),
		DurationSeconds: int64(s.Duration.Seconds()),
		MaxParticipants: s.MaxParticipants,
		MaxPerRoom:      s.MaxPerRoom,
		Status:          string(s.Status),
		CreatedBy:       s.CreatedBy,
		CreatedAt:       s.CreatedAt.UTC(),
		StartedAt:       startedAt,
		EndedAt:         endedAt,
	}
}

func toDomainSession(s *model.Session) *domain.Session {
	session := &domain.Session{
		ID:              s.ID,
		Name:            s.Name,
		ScheduledStart:  s.ScheduledStart.UTC(),
		Duration:        time.Duration(s.DurationSeconds) * time.Second,
		MaxParticipants: s.MaxParticipants,
		MaxPerRoom:      s.MaxPerRoom,
		Status:          domain.SessionStatus(s.Status),
		CreatedBy:       s.CreatedBy,
		CreatedAt:       s.CreatedAt.UTC(),
	}
	if s.StartedAt != nil {
		session.StartedAt = s.StartedAt.UTC()
	}
	if s.EndedAt != nil {
		session.EndedAt = s.EndedAt.UTC()
	}
	return session
}

func toModelRoom(r *domain.Room) *model.Room {
	var closedAt *time.Time
	if !r.ClosedAt.IsZero() {
		t := r.ClosedAt.UTC()
		closedAt = &t
	}

	return &model.Room{
		ID:               r.ID,
		SessionID:        r.SessionID,
		Name:             r.Name,
		ParticipantCount: r.ParticipantCount,
		MaxParticipants:  r.MaxParticipants,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt.UTC(),
		ClosedAt:         closedAt,
	}
}

func toDomainRoom(r *model.Room) *domain.Room {
	room := &domain.Room{
		ID:               r.ID,
		SessionID:        r.SessionID,
		Name:             r.Name,
		ParticipantCount: r.ParticipantCount,
		MaxParticipants:  r.MaxParticipants,
		Status:           domain.RoomStatus(r.Status),
		CreatedAt:        r.CreatedAt.UTC(),
	}
	if r.ClosedAt != nil {
		room.ClosedAt = r.ClosedAt.UTC()
	}
	return room
}

func toDomainRooms(rooms []model.Room) []*domain.Room {
	result := make([]*domain.Room, 0, len(rooms))
	for i := range rooms {
		result = append(result, toDomainRoom(&rooms[i]))
	}
	return result
}

func toModelParticipant(p *domain.Participant) *model.Participant {
	var leftAt *time.Time
	if !p.LeftAt.IsZero() {
		t := p.LeftAt.UTC()
		leftAt = &t
	}

	return &model.Participant{
		ID:           p.ID,
		RoomID:       p.RoomID,
		SessionID:    p.SessionID,
		UserID:       p.UserID,
		DisplayName:  p.DisplayName,
		ConnectionID: p.ConnectionID,
		Type:         string(p.Type),
		IsActive:     p.IsActive,
		JoinedAt:     p.JoinedAt.UTC(),
		LastSeenAt:   p.LastSeenAt.UTC(),
		LeftAt:       leftAt,
	}
}

func toDomainParticipant(p *model.Participant) *domain.Participant {
	participant := &domain.Participant{
		ID:           p.ID,
		RoomID:       p.RoomID,
		SessionID:    p.SessionID,
		UserID:       p.UserID,
		DisplayName:  p.DisplayName,
		ConnectionID: p.ConnectionID,
		Type:         domain.ParticipantType(p.Type),
		IsActive:     p.IsActive,
		JoinedAt:     p.JoinedAt.UTC(),
		LastSeenAt:   p.LastSeenAt.UTC(),
	}
	if p.LeftAt != nil {
		participant.LeftAt = p.LeftAt.UTC()
	}
	return participant
}

func toModelInvite(i *domain.Invite) *model.Invite {
	var consumedAt *time.Time
	if !i.ConsumedAt.IsZero() {
		t := i.ConsumedAt.UTC()
		consumedAt = &t
	}

	return &model.Invite{
		ID:           i.ID,
		Token:        i.Token,
		SessionID:    i.SessionID,
		InviteeEmail: i.InviteeEmail,
		InviteeName:  i.InviteeName,
		Consumed:     i.Consumed,
		ConsumedBy:   i.ConsumedBy,
		CreatedAt:    i.CreatedAt.UTC(),
		ExpiresAt:    i.ExpiresAt.UTC(),
		ConsumedAt:   consumedAt,
	}
}

func toDomainInvite(i *model.Invite) *domain.Invite {
	invite := &domain.Invite{
		ID:           i.ID,
		Token:        i.Token,
		SessionID:    i.SessionID,
		InviteeEmail: i.InviteeEmail,
		InviteeName:  i.InviteeName,
		Consumed:     i.Consumed,
		ConsumedBy:   i.ConsumedBy,
		CreatedAt:    i.CreatedAt.UTC(),
		ExpiresAt:    i.ExpiresAt.UTC(),
	}
	if i.ConsumedAt != nil {
		invite.ConsumedAt = i.ConsumedAt.UTC()
	}
	return invite
}

func toModelMessage(m *domain.Message) *model.Message {
	var externalID *string
	if m.ExternalID != "" {
		e := m.ExternalID
		externalID = &e
	}

	return &model.Message{
		ID:            m.ID,
		RoomID:        m.RoomID,
		SessionID:     m.SessionID,
		ParticipantID: m.ParticipantID,
		Content:       m.Content,
		ExternalID:    externalID,
		IsDeleted:     m.IsDeleted,
		SentAt:        m.SentAt.UTC(),
	}
}

func toDomainMessage(m *model.Message) *domain.Message {
	externalID := ""
	if m.ExternalID != nil {
		externalID = *m.ExternalID
	}

	return &domain.Message{
		ID:            m.ID,
		RoomID:        m.RoomID,
		SessionID:     m.SessionID,
		ParticipantID: m.ParticipantID,
		Content:       m.Content,
		ExternalID:    externalID,
		IsDeleted:     m.IsDeleted,
		SentAt:        m.SentAt.UTC(),
	}
}

package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
	"github.com/immxrtalbeast/swarm_chat/lib/logger/sl"
)

const (
	DefaultLifecycleInterval = time.Minute
	DefaultCleanupInterval   = 5 * time.Minute
	DefaultIdleTimeout       = 30 * time.Minute
	DefaultMessageRetention  = 7 * 24 * time.Hour

	transientRetries    = 3
	transientRetryDelay = 500 * time.Millisecond
)

// Scheduler drives session lifecycle and data pruning on timers. Every job
// runs in its own goroutine with its own ticker; a failing tick is logged
// and retried on the next tick without touching the other jobs.
type Scheduler struct {
	sessions    service.SessionInteractor
	tracker     service.ParticipantInteractor
	sessionRepo repository.SessionRepository
	roomRepo    repository.RoomRepository
	partRepo    repository.ParticipantRepository
	inviteRepo  repository.InviteRepository
	messageRepo repository.MessageRepository
	log         *slog.Logger

	lifecycleInterval time.Duration
	cleanupInterval   time.Duration
	idleTimeout       time.Duration
	messageRetention  time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Scheduler)

func WithLifecycleInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.lifecycleInterval = d }
}

func WithCleanupInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.cleanupInterval = d }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.idleTimeout = d }
}

func WithMessageRetention(d time.Duration) Option {
	return func(s *Scheduler) { s.messageRetention = d }
}

func New(
	sessions service.SessionInteractor,
	tracker service.ParticipantInteractor,
	sessionRepo repository.SessionRepository,
	roomRepo repository.RoomRepository,
	partRepo repository.ParticipantRepository,
	inviteRepo repository.InviteRepository,
	messageRepo repository.MessageRepository,
	log *slog.Logger,
	opts ...Option,
) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	s := &Scheduler{
		sessions:          sessions,
		tracker:           tracker,
		sessionRepo:       sessionRepo,
		roomRepo:          roomRepo,
		partRepo:          partRepo,
		inviteRepo:        inviteRepo,
		messageRepo:       messageRepo,
		log:               log,
		lifecycleInterval: DefaultLifecycleInterval,
		cleanupInterval:   DefaultCleanupInterval,
		idleTimeout:       DefaultIdleTimeout,
		messageRetention:  DefaultMessageRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Start launches all jobs. Stop or cancelling the parent context shuts
// them down between units of work.
func (s *Scheduler) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	jobs := []job{
		{name: "start_due_sessions", interval: s.lifecycleInterval, run: s.startDueSessions},
		{name: "end_overdue_sessions", interval: s.lifecycleInterval, run: s.endOverdueSessions},
		{name: "mark_idle_participants", interval: s.cleanupInterval, run: s.markIdleParticipants},
		{name: "close_empty_rooms", interval: s.cleanupInterval, run: s.closeEmptyRooms},
		{name: "expire_invites", interval: s.cleanupInterval, run: s.expireInvites},
		{name: "archive_old_messages", interval: s.cleanupInterval, run: s.archiveOldMessages},
	}

	for _, j := range jobs {
		s.wg.Add(1)
		go s.runJob(ctx, j)
	}

	s.log.Info("scheduler started", "jobs", len(jobs))
}

func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, j job) {
	defer s.wg.Done()

	log := s.log.With(slog.String("job", j.name))
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.withRetry(ctx, j.run); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error("job tick failed", sl.Err(err))
			}
		}
	}
}

// withRetry retries transient store errors with a short backoff; any other
// failure is surfaced to the tick loop immediately.
func (s *Scheduler) withRetry(ctx context.Context, run func(ctx context.Context) error) error {
	var err error
	delay := transientRetryDelay
	for attempt := 0; attempt < transientRetries; attempt++ {
		err = run(ctx)
		if err == nil || service.KindOf(err) != service.KindTransient {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

func (s *Scheduler) startDueSessions(ctx context.Context) error {
	due, err := s.sessionRepo.ListDueToStart(ctx, time.Now().UTC())
	if err != nil {
		return service.Transient(err)
	}

	for _, session := range due {
		if _, err := s.sessions.StartSession(ctx, session.ID); err != nil {
			// conflict means another worker got there first
			if service.KindOf(err) == service.KindConflict {
				continue
			}
			return err
		}
		s.log.Info("session auto-started", "session_id", session.ID, "name", session.Name)
	}
	return nil
}

func (s *Scheduler) endOverdueSessions(ctx context.Context) error {
	due, err := s.sessionRepo.ListDueToEnd(ctx, time.Now().UTC())
	if err != nil {
		return service.Transient(err)
	}

	for _, session := range due {
		if _, err := s.sessions.EndSession(ctx, session.ID); err != nil {
			if service.KindOf(err) == service.KindConflict {
				continue
			}
			return err
		}
		s.log.Info("session auto-ended", "session_id", session.ID, "name", session.Name)
	}
	return nil
}

func (s *Scheduler) markIdleParticipants(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.idleTimeout)
	idle, err := s.partRepo.ListIdleSince(ctx, cutoff)
	if err != nil {
		return service.Transient(err)
	}

	for _, participant := range idle {
		if err := s.tracker.MarkLeft(ctx, participant.ID); err != nil {
			if service.KindOf(err) == service.KindNotFound {
				continue
			}
			return err
		}
		s.log.Info("idle participant marked left",
			"participant_id", participant.ID,
			"last_seen_at", participant.LastSeenAt,
		)
	}
	return nil
}

func (s *Scheduler) closeEmptyRooms(ctx context.Context) error {
	rooms, err := s.roomRepo.ListIdleEmpty(ctx)
	if err != nil {
		return service.Transient(err)
	}

	now := time.Now().UTC()
	for _, room := range rooms {
		if err := s.roomRepo.Close(ctx, room.ID, now); err != nil {
			return service.Transient(err)
		}
		s.log.Info("empty room closed", "room_id", room.ID, "session_id", room.SessionID)
	}
	return nil
}

func (s *Scheduler) expireInvites(ctx context.Context) error {
	removed, err := s.inviteRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return service.Transient(err)
	}
	if removed > 0 {
		s.log.Info("expired invites pruned", "count", removed)
	}
	return nil
}

func (s *Scheduler) archiveOldMessages(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.messageRetention)
	removed, err := s.messageRepo.PurgeForSessionsEndedBefore(ctx, cutoff)
	if err != nil {
		return service.Transient(err)
	}
	if removed > 0 {
		s.log.Info("old messages archived", "count", removed)
	}
	return nil
}

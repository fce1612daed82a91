package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/immxrtalbeast/swarm_chat/internal/api/http"
	"github.com/immxrtalbeast/swarm_chat/internal/config"
	"github.com/immxrtalbeast/swarm_chat/internal/gateway"
	"github.com/immxrtalbeast/swarm_chat/internal/repository"
	"github.com/immxrtalbeast/swarm_chat/internal/repository/model"
	"github.com/immxrtalbeast/swarm_chat/internal/scheduler"
	"github.com/immxrtalbeast/swarm_chat/internal/service"
	"github.com/immxrtalbeast/swarm_chat/lib/logger/slogpretty"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load(".env")

	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	db, err := connectDatabase(cfg.Database)
	if err != nil {
		log.Error("failed to connect database", slog.Any("error", err))
		os.Exit(1)
	}

	sessionRepo := repository.NewPostgresSessionRepository(db)
	roomRepo := repository.NewPostgresRoomRepository(db)
	participantRepo := repository.NewPostgresParticipantRepository(db)
	inviteRepo := repository.NewPostgresInviteRepository(db)
	messageRepo := repository.NewPostgresMessageRepository(db)

	sessionCache := service.NewCache(cfg.Cache.SessionTTL)
	participantCache := service.NewCache(cfg.Cache.ParticipantTTL)

	sessionService := service.NewSessionService(sessionRepo, roomRepo, participantRepo, sessionCache, log)
	allocationService := service.NewAllocationService(sessionRepo, roomRepo, participantRepo, sessionCache, log)
	participantService := service.NewParticipantService(participantRepo, roomRepo, participantCache, log)
	inviteService := service.NewInviteService(inviteRepo, sessionRepo, allocationService, log)
	messageService := service.NewMessageService(messageRepo, participantRepo, log)

	hub := gateway.NewHub(inviteService, participantService, messageService, log)

	sched := scheduler.New(
		sessionService,
		participantService,
		sessionRepo,
		roomRepo,
		participantRepo,
		inviteRepo,
		messageRepo,
		log,
		scheduler.WithLifecycleInterval(cfg.Scheduler.LifecycleInterval),
		scheduler.WithCleanupInterval(cfg.Scheduler.CleanupInterval),
		scheduler.WithIdleTimeout(cfg.Scheduler.IdleTimeout),
		scheduler.WithMessageRetention(cfg.Scheduler.MessageRetention),
	)

	sessionController := httpapi.NewSessionController(sessionService, participantService)
	inviteController := httpapi.NewInviteController(inviteService, cfg.Invites.DefaultTTL)
	entryController := httpapi.NewEntryController(inviteService, sessionService, participantService)
	roomController := httpapi.NewRoomController(allocationService, messageService, hub)

	router := httpapi.SetupRouter(sessionController, inviteController, entryController, roomController, cfg.HTTP.AllowOrigins)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched.Start(ctx)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	go func() {
		log.Info("starting application", slog.String("addr", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("stopped")
}

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = setupPrettySlog()
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}

func connectDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database dsn is empty")
	}

	// TranslateError maps driver unique-violation errors onto
	// gorm.ErrDuplicatedKey, which the repositories branch on.
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.Session{},
		&model.Room{},
		&model.Participant{},
		&model.Invite{},
		&model.Message{},
	); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

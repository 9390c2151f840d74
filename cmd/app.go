package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/qrave1/RoomRelay/internal/application/config"
	"github.com/qrave1/RoomRelay/internal/application/constant"
	"github.com/qrave1/RoomRelay/internal/application/metric"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/memory"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/postgres"
	"github.com/qrave1/RoomRelay/internal/infra/adapters/postgres/repository"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/handlers"
	"github.com/qrave1/RoomRelay/internal/infra/ports/http/server"
	"github.com/qrave1/RoomRelay/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	setupLogger(cfg)

	slog.Info("Running app", slog.Bool("debug", cfg.Debug), slog.String("port", cfg.Port))

	clk := clockwork.NewRealClock()

	journal, closeJournal, err := newEvictionJournal(ctx, cfg)
	if err != nil {
		slog.Error("init eviction journal", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer closeJournal()

	roomRepo := memory.NewRoomRepository(clk)
	sessionRepo := memory.NewSessionRepository(roomRepo, clk)
	wsConnRepo := memory.NewWSConnectionRepository()

	locks := usecase.NewRoomLocks()
	presenceUsecase := usecase.NewPresenceUsecase(roomRepo, sessionRepo)
	evictionUsecase := usecase.NewEvictionUsecase(cfg.Eviction, clk, locks, roomRepo, sessionRepo, journal)
	roomUsecase := usecase.NewRoomUsecase(locks, roomRepo, sessionRepo, presenceUsecase, evictionUsecase, cfg.Eviction.LeaveGrace)
	signalingUsecase := usecase.NewSignalingUsecase(locks, roomRepo, sessionRepo, presenceUsecase, evictionUsecase, cfg.Eviction.LeaveGrace)

	roomHandler := handlers.NewRoomHandler(cfg, roomUsecase)
	adminHandler := handlers.NewAdminHandler(evictionUsecase)
	iceHandler := handlers.NewIceHandler(cfg, clk)
	wsHandler := handlers.NewWebSocketHandler(cfg, signalingUsecase, wsConnRepo)

	echoSrv := server.New(cfg, roomHandler, adminHandler, iceHandler, wsHandler)
	metricsSrv := metric.NewServer()

	evictionUsecase.Start(ctx)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := echoSrv.Start(":" + cfg.Port); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := metricsSrv.Start(":" + cfg.MetricPort); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		slog.Info("Shutting down servers")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		// сначала закрываем комнаты, чтобы клиенты получили room-closed, потом рвём соединения
		evictionUsecase.Stop(shutdownCtx)
		wsConnRepo.CloseAll()

		if err := echoSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
		}

		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
		}

		return nil
	})

	if err = g.Wait(); err != nil {
		slog.Error("server failed", slog.Any(constant.Error, err))
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	if cfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: level},
			),
		),
	)
}

// newEvictionJournal - postgres, если журнал включён, иначе кольцевой буфер в памяти
func newEvictionJournal(ctx context.Context, cfg *config.Config) (usecase.EvictionJournal, func(), error) {
	if !cfg.Journal.Enabled {
		return memory.NewEvictionJournalRepository(memory.DefaultJournalCapacity), func() {}, nil
	}

	dbConn, err := postgres.NewPostgres(ctx, cfg.Journal.Postgres.DSN())
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if err := dbConn.Close(); err != nil {
			slog.Error("close postgres", slog.Any(constant.Error, err))
		}
	}

	return repository.NewEvictionJournalRepo(dbConn), closeDB, nil
}

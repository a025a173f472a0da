package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SoccerTrends/internal/config"
	"SoccerTrends/internal/infrastructure/httpserver"
	"SoccerTrends/internal/infrastructure/llm"
	"SoccerTrends/internal/infrastructure/reddit"
	"SoccerTrends/internal/infrastructure/storage"
	"SoccerTrends/internal/infrastructure/telegram"
	"SoccerTrends/internal/logging"
	"SoccerTrends/internal/ports"
	"SoccerTrends/internal/source"
	"SoccerTrends/internal/usecase"
)

// Application wires config to the scheduler, the read API and lifecycle
// orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance. Adapter construction is
// deferred to the scheduler's first Start/RunOnce, so New itself cannot
// fail on a missing API key or an unreachable database.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	build := func(ctx context.Context) (*usecase.Pipeline, error) {
		return buildPipeline(ctx, cfg, baseLogger)
	}

	scheduler := usecase.NewScheduler(
		cfg.Scheduler.Interval(),
		build,
		baseLogger.With("component", "scheduler"),
	)

	return &Application{cfg: cfg, logger: baseLogger, scheduler: scheduler}
}

// Run starts the scheduler and the HTTP API, then blocks until the process
// receives SIGINT or SIGTERM. Shutdown stops the timer, waits out any
// in-flight run, and drains the server.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	var server *httpserver.Server
	if a.cfg.Server.IsEnabled() {
		store, err := storage.NewFileStore(a.cfg.Storage.DataDirectory, a.logger.With("component", "store"))
		if err != nil {
			a.scheduler.Stop()
			return fmt.Errorf("open document store: %w", err)
		}

		server = httpserver.New(a.cfg.Server.Addr, store, a.scheduler, a.logger.With("component", "http"))
		go func() {
			if err := server.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("http server stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()
	a.logger.Info("shutting down")

	a.scheduler.Stop()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
	}

	return nil
}

// buildPipeline constructs every adapter the pipeline depends on; any
// failure here surfaces as an init error through the scheduler.
func buildPipeline(ctx context.Context, cfg config.Config, logger *slog.Logger) (*usecase.Pipeline, error) {
	store, err := storage.NewFileStore(cfg.Storage.DataDirectory, logger.With("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}

	api := reddit.NewClient(cfg.Reddit, nil)

	registry := source.NewRegistry()
	registry.Register("api", api)
	registry.Register("html", reddit.NewHTMLScraper(cfg.Reddit, api, nil))

	src, err := registry.Resolve(cfg.Reddit.Strategy)
	if err != nil {
		return nil, err
	}

	analyzer, err := llm.NewAnalyzer(cfg.Analysis)
	if err != nil {
		return nil, fmt.Errorf("configure analyzer: %w", err)
	}

	var archive ports.ArchiveRepository
	if cfg.Database.DSN != "" {
		pg, err := storage.OpenPostgresArchive(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		archive = pg
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	return usecase.NewPipeline(usecase.PipelineDeps{
		Source:       src,
		Analyzer:     analyzer,
		Store:        store,
		Archive:      archive,
		Notifier:     notifier,
		Logger:       logger.With("component", "pipeline"),
		PostLimit:    cfg.Pipeline.PostLimit,
		CommentLimit: cfg.Pipeline.CommentLimit,
	}), nil
}

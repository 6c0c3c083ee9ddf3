package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/imgprompt/internal/config"
	"github.com/vbonduro/imgprompt/internal/logging"
	"github.com/vbonduro/imgprompt/internal/service"
	"github.com/vbonduro/imgprompt/internal/sessionstore/memory"
	"github.com/vbonduro/imgprompt/internal/vision"
	"github.com/vbonduro/imgprompt/internal/web"
	"github.com/vbonduro/imgprompt/internal/web/templates"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, cleanup, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		cleanup()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := vision.NewBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	client := vision.NewClient(backend, logger)

	sessions := memory.NewMemorySessionStore(func(id string) *service.Controller {
		return service.NewController(client, logger.With("session", id))
	}, cfg.SessionTTL, logger)

	server := web.NewServer(sessions, templates.FS, logger, web.WithMaxUploadBytes(cfg.MaxUploadBytes))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx, cfg.ListenAddr)
	})
	g.Go(func() error {
		return sessions.Run(ctx, time.Minute)
	})
	return g.Wait()
}

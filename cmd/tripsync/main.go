package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/josepatrial/studioapviagem-sub000/internal/cli"
	"github.com/josepatrial/studioapviagem-sub000/internal/config"
	"github.com/josepatrial/studioapviagem-sub000/internal/logging"
)

func newLogger(cfg *config.Config) logging.Logger {
	if cfg.LogFile != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		return logging.NewSlogLogger(slog.New(slog.NewJSONHandler(rotated, nil)))
	}
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		log.Error(ctx, "command failed", "error", err)
		os.Exit(1)
	}
}

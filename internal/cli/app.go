// Package cli wires the adapters together and exposes a small command
// surface over the reconciliation engine: login, sync, status, watch, and
// listing of local collections.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/josepatrial/studioapviagem-sub000/internal/blob"
	"github.com/josepatrial/studioapviagem-sub000/internal/config"
	"github.com/josepatrial/studioapviagem-sub000/internal/identity"
	"github.com/josepatrial/studioapviagem-sub000/internal/logging"
	"github.com/josepatrial/studioapviagem-sub000/internal/netx"
	"github.com/josepatrial/studioapviagem-sub000/internal/remote"
	"github.com/josepatrial/studioapviagem-sub000/internal/service"
	"github.com/josepatrial/studioapviagem-sub000/internal/store"
	syncengine "github.com/josepatrial/studioapviagem-sub000/internal/sync"
)

type App struct {
	config       *config.Config
	log          logging.Logger
	db           *sql.DB
	identity     *identity.TokenProvider
	fleet        *service.Fleet
	orchestrator *syncengine.Orchestrator
	reader       *bufio.Reader
	out          io.Writer
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	recordStore := store.NewSQLiteStore(db)
	tokens := identity.NewTokenProvider(cfg.AuthBaseURL)
	remoteStore := remote.NewHTTPStore(cfg.RemoteBaseURL, tokens.Token)

	blobs, err := blob.NewS3Store(ctx, blob.S3Config{
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		Bucket:       cfg.S3Bucket,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error initializing blob store: %w", err)
	}

	prober := netx.NewHTTPProber(cfg.HealthURL)
	orchestrator := syncengine.NewOrchestrator(recordStore, remoteStore, blobs, tokens, prober, log)

	return &App{
		config:       cfg,
		log:          log,
		db:           db,
		identity:     tokens,
		fleet:        service.NewFleet(recordStore, tokens),
		orchestrator: orchestrator,
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}, nil
}

// Fleet exposes the record service, mainly for embedding callers.
func (a *App) Fleet() *service.Fleet { return a.fleet }

// Orchestrator exposes the sync engine.
func (a *App) Orchestrator() *syncengine.Orchestrator { return a.orchestrator }

func (a *App) Close() error {
	return a.db.Close()
}

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	dbcopilot "github.com/alnah/go-dbcopilot"
	"github.com/alnah/go-dbcopilot/internal/assets"
	"github.com/alnah/go-dbcopilot/internal/config"
	"github.com/alnah/go-dbcopilot/internal/database"
)

// reportService renders reports and owns browsers that must be released.
type reportService interface {
	dbcopilot.Reporter
	Close() error
}

// Environment holds injectable dependencies for testability.
// Includes I/O, time, configuration, and the factories for external services.
type Environment struct {
	Now         func() time.Time
	Stdout      io.Writer
	Stderr      io.Writer
	AssetLoader assets.AssetLoader // nil: resolved from config assets.basePath
	Config      *config.Config     // Set once flags, env and file are merged

	OpenDatabase func(ctx context.Context, cfg config.DatabaseConfig) (database.Querier, error)
	NewModel     func(cfg config.LLMConfig) (dbcopilot.Model, error)
	NewReporter  func(cfg *config.Config, loader assets.AssetLoader, logger *slog.Logger) (reportService, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:          time.Now,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Config:       config.DefaultConfig(),
		OpenDatabase: openDatabase,
		NewModel:     newModel,
		NewReporter:  newReporter,
	}
}

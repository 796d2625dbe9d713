package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	dbcopilot "github.com/alnah/go-dbcopilot"
	"github.com/alnah/go-dbcopilot/internal/assets"
	"github.com/alnah/go-dbcopilot/internal/config"
	"github.com/alnah/go-dbcopilot/internal/database"
	"github.com/alnah/go-dbcopilot/internal/llm"
	applog "github.com/alnah/go-dbcopilot/internal/log"
)

// openDatabase connects to the configured database.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (database.Querier, error) {
	maxConns := cfg.MaxConns
	if maxConns > math.MaxInt32 {
		maxConns = math.MaxInt32
	}
	return database.Open(ctx, database.Options{
		Driver:       cfg.Driver,
		ConnString:   cfg.ConnString(),
		MaxConns:     int32(maxConns), // #nosec G115 -- clamped above
		QueryTimeout: config.Duration(cfg.QueryTimeout, 0),
	})
}

// newModel builds the language model client.
func newModel(cfg config.LLMConfig) (dbcopilot.Model, error) {
	return llm.New(llm.Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		Endpoint:   cfg.Endpoint,
		APIVersion: cfg.APIVersion,
		APIKey:     cfg.APIKey,
		MaxTokens:  int64(cfg.MaxTokens),
	})
}

// reportOptions maps the report section of the config to builder options.
func reportOptions(cfg *config.Config, loader assets.AssetLoader, logger *slog.Logger) []dbcopilot.ReportOption {
	rc := cfg.Report
	page := dbcopilot.DefaultPageSettings()
	if rc.PageSize != "" {
		page.Size = strings.ToLower(rc.PageSize)
	}
	if rc.Orientation != "" {
		page.Orientation = strings.ToLower(rc.Orientation)
	}
	if rc.Margin > 0 {
		page.Margin = rc.Margin
	}

	opts := []dbcopilot.ReportOption{
		dbcopilot.WithAssetLoader(loader),
		dbcopilot.WithInterleave(rc.Interleave),
		dbcopilot.WithPage(page),
		dbcopilot.WithFooter(rc.Footer, ""),
		dbcopilot.WithDateFormat(rc.DateFormat),
		dbcopilot.WithRenderTimeout(config.Duration(rc.Timeout, 0)),
		dbcopilot.WithReportLogger(logger),
	}
	if rc.Style != "" {
		opts = append(opts, dbcopilot.WithStyle(rc.Style))
	}
	if rc.Title != "" {
		opts = append(opts, dbcopilot.WithTitle(rc.Title))
	}
	return opts
}

// newReporter builds a pool of report builders. One builder is created up
// front so a bad style or page setting fails at startup; it starts no browser.
func newReporter(cfg *config.Config, loader assets.AssetLoader, logger *slog.Logger) (reportService, error) {
	opts := reportOptions(cfg, loader, logger)
	probe, err := dbcopilot.NewReportBuilder(opts...)
	if err != nil {
		return nil, err
	}
	_ = probe.Close()

	size := dbcopilot.ResolvePoolSize(cfg.Report.Workers)
	logger.Debug("report pool ready", "size", size)
	return dbcopilot.NewReportBuilderPool(size, func() (*dbcopilot.ReportBuilder, error) {
		return dbcopilot.NewReportBuilder(opts...)
	}), nil
}

// assetLoader returns the environment loader, or one resolving the
// configured base path with embedded fallback.
func assetLoader(env *Environment, cfg *config.Config) (assets.AssetLoader, error) {
	if env.AssetLoader != nil {
		return env.AssetLoader, nil
	}
	resolver, err := assets.NewAssetResolver(cfg.Assets.BasePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return resolver, nil
}

// newLogger writes structured logs to the environment's stderr.
func newLogger(env *Environment, cfg *config.Config, verbose bool) *slog.Logger {
	return applog.New(env.Stderr, cfg.Server.LogFormat, verbose)
}

// app bundles the services a command runs against.
type app struct {
	copilot  *dbcopilot.Copilot
	db       database.Querier
	reporter reportService
	logger   *slog.Logger
}

// Close releases the database and any browsers.
func (a *app) Close() error {
	var err error
	if a.reporter != nil {
		err = a.reporter.Close()
	}
	if a.db != nil {
		if cerr := a.db.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// appOptions selects the optional services of an app.
type appOptions struct {
	reports  bool // start the report pool
	database bool // connect to the database
}

// offlineDB stands in for the database when a command only generates SQL.
type offlineDB struct{}

func (offlineDB) Query(context.Context, string) (*database.Result, error) {
	return nil, fmt.Errorf("%w: database not opened", database.ErrConnection)
}

func (offlineDB) Close() error { return nil }

// buildApp wires prompts, model, database and the report pool into a
// Copilot.
func buildApp(ctx context.Context, env *Environment, cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	loader, err := assetLoader(env, cfg)
	if err != nil {
		return nil, err
	}

	prompts, err := dbcopilot.LoadPrompts(loader, cfg.Prompts.Set, cfg.Prompts.File)
	if err != nil {
		return nil, err
	}

	model, err := env.NewModel(cfg.LLM)
	if err != nil {
		return nil, err
	}

	var db database.Querier = offlineDB{}
	if opts.database {
		if db, err = env.OpenDatabase(ctx, cfg.Database); err != nil {
			return nil, err
		}
	}
	a := &app{db: db, logger: logger}

	copts := []dbcopilot.CopilotOption{
		dbcopilot.WithLogger(logger),
		dbcopilot.WithNow(env.Now),
		dbcopilot.WithDataAppendix(cfg.Report.AppendData),
		dbcopilot.WithReportTitle(cfg.Report.Title),
	}
	if opts.reports {
		reporter, err := env.NewReporter(cfg, loader, logger)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.reporter = reporter
		copts = append(copts, dbcopilot.WithReporter(reporter))
	}

	a.copilot, err = dbcopilot.NewCopilot(model, db, prompts, copts...)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

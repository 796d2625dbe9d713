package main

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	dbcopilot "github.com/alnah/go-dbcopilot"
	"github.com/alnah/go-dbcopilot/internal/assets"
	"github.com/alnah/go-dbcopilot/internal/config"
	"github.com/alnah/go-dbcopilot/internal/database"
)

func TestOpenDatabase_SQLiteInMemory(t *testing.T) {
	t.Parallel()

	db, err := openDatabase(context.Background(), config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		DSN:          "file::memory:",
		QueryTimeout: "5s",
	})
	if err != nil {
		t.Fatalf("openDatabase: %v", err)
	}
	defer func() { _ = db.Close() }()

	res, err := db.Query(context.Background(), "SELECT 1 AS one")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Rows) != 1 || res.Columns[0] != "one" {
		t.Errorf("result = %+v", res)
	}
}

func TestOpenDatabase_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := openDatabase(context.Background(), config.DatabaseConfig{Driver: "oracle", DSN: "x"})
	if !errors.Is(err, database.ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestNewModel_MissingKey(t *testing.T) {
	t.Parallel()

	_, err := newModel(config.DefaultConfig().LLM)
	if exitCodeFor(err) != ExitUsage {
		t.Errorf("exit code = %d for %v, want usage", exitCodeFor(err), err)
	}
}

func TestNewModel_OpenAI(t *testing.T) {
	t.Parallel()

	m, err := newModel(config.LLMConfig{Provider: config.ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-test"})
	if err != nil || m == nil {
		t.Fatalf("newModel() = %v, %v", m, err)
	}
}

func TestReportOptions(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Report.PageSize = "A4"
	cfg.Report.Orientation = "Landscape"
	cfg.Report.Margin = 1.5

	b, err := dbcopilot.NewReportBuilder(reportOptions(cfg, assets.NewEmbeddedLoader(), slog.New(slog.DiscardHandler))...)
	if err != nil {
		t.Fatalf("NewReportBuilder: %v", err)
	}
	_ = b.Close()
}

func TestNewReporter(t *testing.T) {
	t.Parallel()

	t.Run("builds a pool", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Report.Workers = 2
		rep, err := newReporter(cfg, assets.NewEmbeddedLoader(), slog.New(slog.DiscardHandler))
		if err != nil {
			t.Fatalf("newReporter: %v", err)
		}
		defer func() { _ = rep.Close() }()

		pool, ok := rep.(*dbcopilot.ReportBuilderPool)
		if !ok {
			t.Fatalf("reporter type = %T", rep)
		}
		if pool.Size() != 2 {
			t.Errorf("pool size = %d, want 2", pool.Size())
		}
	})

	t.Run("unknown style fails early", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Report.Style = "neon"
		_, err := newReporter(cfg, assets.NewEmbeddedLoader(), slog.New(slog.DiscardHandler))
		if !errors.Is(err, assets.ErrStyleNotFound) {
			t.Errorf("expected ErrStyleNotFound, got %v", err)
		}
	})
}

func TestBuildApp_ClosesDatabaseOnReporterError(t *testing.T) {
	clearEnv(t)
	d := newTestDeps(t)
	boom := errors.New("no browsers")
	d.env.NewReporter = func(*config.Config, assets.AssetLoader, *slog.Logger) (reportService, error) {
		return nil, boom
	}

	_, err := buildApp(context.Background(), d.env, config.DefaultConfig(), slog.New(slog.DiscardHandler), appOptions{reports: true, database: true})
	if !errors.Is(err, boom) {
		t.Fatalf("expected reporter error, got %v", err)
	}
	if !d.db.closed {
		t.Error("database left open")
	}
}

func TestOfflineDB(t *testing.T) {
	t.Parallel()

	_, err := offlineDB{}.Query(context.Background(), "SELECT 1")
	if !errors.Is(err, dbcopilot.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

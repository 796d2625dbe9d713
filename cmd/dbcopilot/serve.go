package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	dbcopilot "github.com/alnah/go-dbcopilot"
	"github.com/alnah/go-dbcopilot/internal/config"
	"github.com/alnah/go-dbcopilot/internal/fileutil"
)

// Routes served by the copilot. The misspelled path is still called by
// older web frontends.
const (
	copilotPath       = "/database_copilot"
	legacyCopilotPath = "/databse_copilot"
	healthPath        = "/healthz"
)

const (
	maxRequestBody        = 1 << 20
	readHeaderTimeout     = 10 * time.Second
	shutdownTimeout       = 15 * time.Second
	defaultRequestTimeout = 2 * time.Minute
)

// asker runs one question through the pipeline.
type asker interface {
	Ask(ctx context.Context, req dbcopilot.Request) (*dbcopilot.Answer, error)
}

var _ asker = (*dbcopilot.Copilot)(nil)

type askRequest struct {
	Query string `json:"query"`
}

type askResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// server is the HTTP front of a Copilot.
type server struct {
	copilot   asker
	logger    *slog.Logger
	timeout   time.Duration
	reports   bool
	reportDir string
	newID     func() string
}

// runServe starts the HTTP server and blocks until ctx is canceled.
func runServe(ctx context.Context, args []string, env *Environment) error {
	f, err := parseServeFlags(args, env.Stdout)
	if err != nil {
		return err
	}

	cfg, ec, err := resolveConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeServeFlags(f, cfg)
	if err := finishConfig(cfg, ec, env); err != nil {
		return err
	}

	logger := newLogger(env, cfg, f.common.verbose)

	if cfg.Report.Enabled {
		if err := fileutil.EnsureDir(cfg.Report.OutputDir); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteReport, err)
		}
	}

	a, err := buildApp(ctx, env, cfg, logger, appOptions{reports: cfg.Report.Enabled, database: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	s := &server{
		copilot:   a.copilot,
		logger:    logger,
		timeout:   config.Duration(cfg.Server.RequestTimeout, defaultRequestTimeout),
		reports:   cfg.Report.Enabled,
		reportDir: cfg.Report.OutputDir,
		newID:     uuid.NewString,
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Server.Addr, err)
	}
	httpSrv := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
	logger.Info("listening", "addr", ln.Addr().String(), "reports", cfg.Report.Enabled)
	return serveHTTP(ctx, httpSrv, ln, logger)
}

// mergeServeFlags applies serve flag values to cfg.
func mergeServeFlags(f *serveFlags, cfg *config.Config) {
	mergeDatabaseFlags(&f.database, cfg)
	mergeModelFlags(&f.model, cfg)
	mergeReportFlags(&f.report, cfg)
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.requestTimeout != "" {
		cfg.Server.RequestTimeout = f.requestTimeout
	}
	if f.reports {
		cfg.Report.Enabled = true
	}
	if f.reportDir != "" {
		cfg.Report.OutputDir = f.reportDir
	}
	if f.appendData {
		cfg.Report.AppendData = true
	}
	if f.workers > 0 {
		cfg.Report.Workers = f.workers
	}
}

// serveHTTP serves on ln until ctx is done, then shuts down gracefully.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// routes builds the chi router.
func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get(healthPath, s.handleHealth)
	r.Post(copilotPath, s.handleAsk)
	r.Post(legacyCopilotPath, s.handleAsk)
	return r
}

// logRequests logs one line per request.
func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var body askRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	req := dbcopilot.Request{Question: body.Query}
	if s.reports {
		req.BusinessReport = true
		req.ReportPath = filepath.Join(s.reportDir, s.newID()+".pdf")
	}

	answer, err := s.copilot.Ask(ctx, req)
	if err != nil {
		status := statusFor(err)
		s.logger.Error("question failed",
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeJSON(w, status, errorResponse{Error: clientMessage(status, err)})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{Response: answer.Response})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dbcopilot.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, dbcopilot.ErrConnection):
		return http.StatusServiceUnavailable
	case errors.Is(err, dbcopilot.ErrQuery):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dbcopilot.ErrUpstreamModel):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage hides internal failure details behind a generic message.
func clientMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

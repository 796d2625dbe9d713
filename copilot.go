package dbcopilot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alnah/go-dbcopilot/internal/database"
	"github.com/alnah/go-dbcopilot/internal/llm"
)

// Model completes one system prompt and one user message.
type Model interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Database runs one SQL statement and returns all rows.
type Database interface {
	Query(ctx context.Context, query string) (*QueryResult, error)
}

var (
	_ Model    = llm.Completer(nil)
	_ Database = database.Querier(nil)
)

// Copilot answers natural-language questions about a database:
// question -> SQL -> rows -> answer, optionally rendered as a PDF report.
// It is safe for concurrent use when its collaborators are.
type Copilot struct {
	model       Model
	db          Database
	prompts     *Prompts
	reporter    Reporter
	appendData  bool
	reportTitle string
	logger      *slog.Logger
	now         func() time.Time
}

// CopilotOption configures a Copilot.
type CopilotOption func(*Copilot)

// WithReporter enables business reports.
func WithReporter(r Reporter) CopilotOption {
	return func(c *Copilot) { c.reporter = r }
}

// WithDataAppendix appends the SQL and the result rows to every report.
func WithDataAppendix(enabled bool) CopilotOption {
	return func(c *Copilot) { c.appendData = enabled }
}

// WithReportTitle sets the title of business reports. Empty uses the
// builder default.
func WithReportTitle(title string) CopilotOption {
	return func(c *Copilot) { c.reportTitle = title }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) CopilotOption {
	return func(c *Copilot) { c.logger = l }
}

// WithNow sets the clock used for durations, for tests.
func WithNow(now func() time.Time) CopilotOption {
	return func(c *Copilot) { c.now = now }
}

// NewCopilot wires the model, the database and the prompts together.
func NewCopilot(model Model, db Database, prompts *Prompts, opts ...CopilotOption) (*Copilot, error) {
	if model == nil || db == nil {
		return nil, fmt.Errorf("%w: model and database are required", ErrInternal)
	}
	if prompts == nil {
		return nil, fmt.Errorf("%w: nil prompts", ErrPromptMissing)
	}
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	c := &Copilot{
		model:   model,
		db:      db,
		prompts: prompts,
		logger:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ask runs the pipeline for req. The returned Answer is partially filled
// on error (SQL is kept once generated).
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Copilot) Ask(ctx context.Context, req Request) (answer *Answer, err error) {
	start := c.now()
	answer = &Answer{Question: strings.TrimSpace(req.Question)}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInternal, r)
		}
		answer.Duration = c.now().Sub(start)
		if err != nil {
			c.logger.Error("question failed", "error", err, "duration", answer.Duration)
		}
	}()

	if answer.Question == "" {
		return answer, ErrEmptyQuestion
	}

	answer.SQL, err = c.GenerateSQL(ctx, answer.Question)
	if err != nil {
		return answer, err
	}
	if req.SQLOnly {
		return answer, nil
	}

	answer.Result, err = c.runQuery(ctx, answer.SQL)
	if err != nil {
		return answer, err
	}

	answer.Response, err = c.summarize(ctx, answer.Question, answer.Result, req.BusinessReport)
	if err != nil {
		return answer, err
	}

	if req.BusinessReport && req.ReportPath != "" {
		if err := c.writeReport(ctx, answer, req.ReportPath); err != nil {
			return answer, err
		}
		answer.ReportPath = req.ReportPath
	}

	c.logger.Info("question answered",
		"rows", len(answer.Result.Rows),
		"business_report", req.BusinessReport,
		"duration", c.now().Sub(start))
	return answer, nil
}

// GenerateSQL asks the model for a query answering question and strips
// the markdown around it.
func (c *Copilot) GenerateSQL(ctx context.Context, question string) (string, error) {
	start := c.now()
	reply, err := c.model.Complete(ctx, c.prompts.QueryGenerator, question)
	if err != nil {
		return "", upstream(err)
	}

	sql := CleanSQL(reply)
	if sql == "" {
		return "", fmt.Errorf("%w: %w", ErrUpstreamModel, ErrEmptySQL)
	}
	c.logger.Debug("sql generated", "stage", "sql", "duration", c.now().Sub(start), "sql", sql)
	return sql, nil
}

func (c *Copilot) runQuery(ctx context.Context, sql string) (*QueryResult, error) {
	start := c.now()
	res, err := c.db.Query(ctx, sql)
	if err != nil {
		if errors.Is(err, ErrConnection) || errors.Is(err, ErrQuery) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrQuery, ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	if res == nil {
		res = &QueryResult{}
	}
	c.logger.Debug("query executed", "stage", "query", "duration", c.now().Sub(start), "rows", len(res.Rows))
	return res, nil
}

func (c *Copilot) summarize(ctx context.Context, question string, res *QueryResult, businessReport bool) (string, error) {
	start := c.now()
	out, err := c.model.Complete(ctx, c.prompts.answerSystem(businessReport), answerInput(question, res.Rows))
	if err != nil {
		return "", upstream(err)
	}
	c.logger.Debug("answer generated", "stage", "answer", "duration", c.now().Sub(start))
	return strings.TrimSpace(out), nil
}

func (c *Copilot) writeReport(ctx context.Context, answer *Answer, path string) error {
	if c.reporter == nil {
		return fmt.Errorf("%w: no report renderer configured", ErrRender)
	}

	md := answer.Response
	if c.appendData {
		md += "\n\n" + DataAppendix(answer.SQL, answer.Result)
	}

	start := c.now()
	err := c.reporter.RenderFile(ctx, Document{
		Markdown: md,
		Title:    c.reportTitle,
		Subtitle: answer.Question,
	}, path)
	if err != nil {
		return renderError(err)
	}
	c.logger.Info("report written", "stage", "report", "path", path, "duration", c.now().Sub(start))
	return nil
}

func upstream(err error) error {
	if errors.Is(err, ErrUpstreamModel) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamModel, err)
}

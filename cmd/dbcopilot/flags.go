package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-dbcopilot/internal/config"
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	envFile   string
	logFormat string
	quiet     bool
	verbose   bool
}

// databaseFlags holds database connection flags.
type databaseFlags struct {
	driver string
	dsn    string
}

// modelFlags holds language model flags.
type modelFlags struct {
	provider string
	model    string
	endpoint string
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// reportFlags holds report rendering flags.
type reportFlags struct {
	title      string
	style      string
	interleave bool
	noFooter   bool
	dateFormat string
	timeout    string
	page       pageFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common         commonFlags
	database       databaseFlags
	model          modelFlags
	report         reportFlags
	addr           string
	requestTimeout string
	reports        bool
	reportDir      string
	appendData     bool
	workers        int
}

// askFlags holds all flags for the ask command.
type askFlags struct {
	common     commonFlags
	database   databaseFlags
	model      modelFlags
	report     reportFlags
	sqlOnly    bool
	output     string
	appendData bool
}

// reportCmdFlags holds all flags for the report command.
type reportCmdFlags struct {
	common commonFlags
	report reportFlags
	output string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text, json")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addDatabaseFlags adds database flags to a FlagSet.
func addDatabaseFlags(fs *flag.FlagSet, f *databaseFlags) {
	fs.StringVar(&f.driver, "driver", "", "database driver: postgres, sqlite")
	fs.StringVar(&f.dsn, "dsn", "", "connection string or sqlite file")
}

// addModelFlags adds language model flags to a FlagSet.
func addModelFlags(fs *flag.FlagSet, f *modelFlags) {
	fs.StringVar(&f.provider, "provider", "", "model provider: azure, openai, anthropic")
	fs.StringVarP(&f.model, "model", "m", "", "model name or Azure deployment")
	fs.StringVar(&f.endpoint, "endpoint", "", "Azure endpoint or API base URL")
}

// addReportFlags adds report rendering flags to a FlagSet.
func addReportFlags(fs *flag.FlagSet, f *reportFlags) {
	fs.StringVar(&f.title, "title", "", "report title")
	fs.StringVar(&f.style, "style", "", "report style name")
	fs.BoolVar(&f.interleave, "interleave", false, "place tables where they appear in the text")
	fs.BoolVar(&f.noFooter, "no-footer", false, "disable page number footer")
	fs.StringVar(&f.dateFormat, "date-format", "", "report date: iso, european, us, long, or tokens")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF rendering timeout (e.g., 30s, 2m)")
	fs.StringVarP(&f.page.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.page.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.page.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// newFlagSet returns a FlagSet that reports errors instead of exiting and
// prints usage to w on --help.
func newFlagSet(name string, w io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() { usage(w) }
	return fs
}

// parseError keeps flag.ErrHelp as is and marks everything else as usage.
func parseError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, w io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newFlagSet("serve", w, printServeUsage)

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :8084)")
	fs.StringVar(&f.requestTimeout, "request-timeout", "", "per-request deadline (e.g., 90s)")
	fs.BoolVar(&f.reports, "reports", false, "write a PDF business report for every request")
	fs.StringVar(&f.reportDir, "report-dir", "", "directory for server-side reports")
	fs.BoolVar(&f.appendData, "append-data", false, "append the SQL and result rows to reports")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent report browsers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addDatabaseFlags(fs, &f.database)
	addModelFlags(fs, &f.model)
	addReportFlags(fs, &f.report)

	if err := fs.Parse(args); err != nil {
		return nil, parseError(err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, fs.Args())
	}
	return f, nil
}

// parseAskFlags parses ask command flags and returns the question.
func parseAskFlags(args []string, w io.Writer) (*askFlags, string, error) {
	f := &askFlags{}
	fs := newFlagSet("ask", w, printAskUsage)

	fs.BoolVar(&f.sqlOnly, "sql-only", false, "print the generated SQL without running it")
	fs.StringVarP(&f.output, "report", "o", "", "write a PDF business report to this path")
	fs.BoolVar(&f.appendData, "append-data", false, "append the SQL and result rows to the report")

	addCommonFlags(fs, &f.common)
	addDatabaseFlags(fs, &f.database)
	addModelFlags(fs, &f.model)
	addReportFlags(fs, &f.report)

	if err := fs.Parse(args); err != nil {
		return nil, "", parseError(err)
	}
	return f, strings.TrimSpace(strings.Join(fs.Args(), " ")), nil
}

// parseReportFlags parses report command flags and returns the input path.
func parseReportFlags(args []string, w io.Writer) (*reportCmdFlags, string, error) {
	f := &reportCmdFlags{}
	fs := newFlagSet("report", w, printReportUsage)

	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (default: input with .pdf)")

	addCommonFlags(fs, &f.common)
	addReportFlags(fs, &f.report)

	if err := fs.Parse(args); err != nil {
		return nil, "", parseError(err)
	}
	if fs.NArg() != 1 {
		return nil, "", fmt.Errorf("%w: report takes exactly one markdown file", ErrUsage)
	}
	return f, fs.Arg(0), nil
}

// mergeCommonFlags applies common flag values to cfg.
func mergeCommonFlags(f *commonFlags, cfg *config.Config) {
	if f.logFormat != "" {
		cfg.Server.LogFormat = f.logFormat
	}
}

// mergeDatabaseFlags applies database flag values to cfg.
func mergeDatabaseFlags(f *databaseFlags, cfg *config.Config) {
	if f.driver != "" {
		cfg.Database.Driver = f.driver
	}
	if f.dsn != "" {
		cfg.Database.DSN = f.dsn
	}
}

// mergeModelFlags applies model flag values to cfg.
func mergeModelFlags(f *modelFlags, cfg *config.Config) {
	if f.provider != "" {
		cfg.LLM.Provider = f.provider
	}
	if f.model != "" {
		cfg.LLM.Model = f.model
	}
	if f.endpoint != "" {
		cfg.LLM.Endpoint = f.endpoint
	}
}

// mergeReportFlags applies report flag values to cfg.
// Boolean flags only switch features on (or the footer off).
func mergeReportFlags(f *reportFlags, cfg *config.Config) {
	if f.title != "" {
		cfg.Report.Title = f.title
	}
	if f.style != "" {
		cfg.Report.Style = f.style
	}
	if f.interleave {
		cfg.Report.Interleave = true
	}
	if f.noFooter {
		cfg.Report.Footer = false
	}
	if f.dateFormat != "" {
		cfg.Report.DateFormat = f.dateFormat
	}
	if f.timeout != "" {
		cfg.Report.Timeout = f.timeout
	}
	if f.page.size != "" {
		cfg.Report.PageSize = f.page.size
	}
	if f.page.orientation != "" {
		cfg.Report.Orientation = f.page.orientation
	}
	if f.page.margin != 0 {
		cfg.Report.Margin = f.page.margin
	}
}

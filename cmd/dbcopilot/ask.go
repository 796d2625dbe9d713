package main

import (
	"context"
	"fmt"

	dbcopilot "github.com/alnah/go-dbcopilot"
	"github.com/alnah/go-dbcopilot/internal/config"
)

// defaultQuestion is asked when none is given on the command line.
const defaultQuestion = "Find the Token Pair with the Highest Difference Between Buy and Sell Transactions in the Last 24 Hours"

// runAsk runs one question through the pipeline and prints the answer.
func runAsk(ctx context.Context, args []string, env *Environment) error {
	f, question, err := parseAskFlags(args, env.Stdout)
	if err != nil {
		return err
	}
	if question == "" {
		question = defaultQuestion
	}

	cfg, ec, err := resolveConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeAskFlags(f, cfg)
	if err := finishConfig(cfg, ec, env); err != nil {
		return err
	}

	logger := newLogger(env, cfg, f.common.verbose)
	wantReport := f.output != "" && !f.sqlOnly

	a, err := buildApp(ctx, env, cfg, logger, appOptions{reports: wantReport, database: !f.sqlOnly})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	req := dbcopilot.Request{Question: question, SQLOnly: f.sqlOnly}
	if wantReport {
		req.BusinessReport = true
		req.ReportPath = f.output
	}

	answer, err := a.copilot.Ask(ctx, req)
	if err != nil {
		if answer != nil && answer.SQL != "" && !f.common.quiet {
			fmt.Fprintf(env.Stderr, "SQL:\n%s\n", answer.SQL)
		}
		return err
	}

	printAnswer(env, answer, f)
	return nil
}

// mergeAskFlags applies ask flag values to cfg.
func mergeAskFlags(f *askFlags, cfg *config.Config) {
	mergeDatabaseFlags(&f.database, cfg)
	mergeModelFlags(&f.model, cfg)
	mergeReportFlags(&f.report, cfg)
	if f.appendData {
		cfg.Report.AppendData = true
	}
}

// printAnswer writes the SQL alone in --sql-only mode, otherwise the answer
// on stdout with the SQL and timing on stderr when verbose.
func printAnswer(env *Environment, answer *dbcopilot.Answer, f *askFlags) {
	if f.sqlOnly {
		fmt.Fprintln(env.Stdout, answer.SQL)
		return
	}

	if f.common.verbose {
		fmt.Fprintf(env.Stderr, "SQL:\n%s\n", answer.SQL)
		rows := 0
		if answer.Result != nil {
			rows = len(answer.Result.Rows)
		}
		fmt.Fprintf(env.Stderr, "%d rows in %v\n", rows, answer.Duration.Round(1e6))
	}

	fmt.Fprintln(env.Stdout, answer.Response)

	if answer.ReportPath != "" && !f.common.quiet {
		fmt.Fprintf(env.Stderr, "Created %s\n", answer.ReportPath)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	dbcopilot "github.com/alnah/go-dbcopilot"
)

// Sentinel errors for CLI file operations.
var (
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteReport  = errors.New("failed to write report")
)

// runReport renders a markdown file to a PDF report.
func runReport(ctx context.Context, args []string, env *Environment) error {
	f, input, err := parseReportFlags(args, env.Stdout)
	if err != nil {
		return err
	}

	cfg, _, err := resolveConfig(&f.common, env)
	if err != nil {
		return err
	}
	mergeReportFlags(&f.report, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	env.Config = cfg

	markdown, err := dbcopilot.ReadMarkdownFile(input)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}

	output := f.output
	if output == "" {
		output = reportOutputPath(input)
	}

	logger := newLogger(env, cfg, f.common.verbose)
	loader, err := assetLoader(env, cfg)
	if err != nil {
		return err
	}
	reporter, err := env.NewReporter(cfg, loader, logger)
	if err != nil {
		return err
	}
	defer func() { _ = reporter.Close() }()

	start := env.Now()
	if err := reporter.RenderFile(ctx, dbcopilot.Document{Markdown: markdown}, output); err != nil {
		return err
	}

	if !f.common.quiet {
		fmt.Fprintf(env.Stdout, "Created %s\n", output)
	}
	if f.common.verbose {
		fmt.Fprintf(env.Stderr, "Rendered in %v\n", env.Now().Sub(start).Round(1e6))
	}
	return nil
}

// reportOutputPath replaces the markdown extension with .pdf.
func reportOutputPath(input string) string {
	ext := filepath.Ext(input)
	switch strings.ToLower(ext) {
	case ".md", ".markdown":
		return strings.TrimSuffix(input, ext) + ".pdf"
	default:
		return input + ".pdf"
	}
}

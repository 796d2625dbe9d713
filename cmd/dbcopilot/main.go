package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	dbcopilot "github.com/alnah/go-dbcopilot"
	"github.com/alnah/go-dbcopilot/internal/config"
	"github.com/alnah/go-dbcopilot/internal/fileutil"
	"github.com/alnah/go-dbcopilot/internal/hints"
	"github.com/alnah/go-dbcopilot/internal/llm"
)

// Version is set at build time via ldflags.
var Version = "dev"

// defaultEnvFile is loaded when present; other paths must exist.
const defaultEnvFile = ".env"

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command in args[1] and returns the exit code.
func runMain(args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}
	cmd, rest := args[1], args[2:]

	setMaxProcs(env.Stderr, hasVerboseFlag(rest))

	ctx, stop := notifyContext(context.Background())
	defer stop()

	var err error
	switch cmd {
	case "serve":
		err = runServe(ctx, rest, env)
	case "ask":
		err = runAsk(ctx, rest, env)
	case "report":
		err = runReport(ctx, rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "dbcopilot %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, env.Stdout)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "unknown command: %s\n\n", cmd)
		printUsage(env.Stderr)
		return ExitUsage
	}

	if errors.Is(err, flag.ErrHelp) {
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, env.Config))
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// setMaxProcs configures GOMAXPROCS from the container CPU quota.
// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
// in which case Go runtime defaults apply and the program continues safely.
func setMaxProcs(w io.Writer, verbose bool) {
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(w, format+"\n", args...)
		}))
		return
	}
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
}

// hasVerboseFlag peeks at args before the command parses them.
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		if a == "--" {
			return false
		}
		if a == "-v" || a == "--verbose" {
			return true
		}
	}
	return false
}

// loadDotEnv loads path into the process environment, overriding variables
// already set. A missing default file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if !fileutil.FileExists(path) {
		if path == defaultEnvFile {
			return nil
		}
		return fmt.Errorf("loading env file %s: %w", path, os.ErrNotExist)
	}
	if err := godotenv.Overload(path); err != nil {
		return fmt.Errorf("%w: env file %s: %v", config.ErrConfigParse, path, err)
	}
	return nil
}

// resolveConfig merges defaults, the config file and the environment, then
// the common flags. Command flags are merged by the caller before
// finishConfig.
func resolveConfig(common *commonFlags, env *Environment) (*config.Config, *envConfig, error) {
	if err := loadDotEnv(common.envFile); err != nil {
		return nil, nil, err
	}
	if !common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}
	ec := loadEnvConfig()

	name := common.config
	if name == "" {
		name = ec.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		var err error
		if cfg, err = config.LoadConfig(name); err != nil {
			return nil, nil, err
		}
	}

	applyEnvConfig(ec, cfg)
	mergeCommonFlags(common, cfg)
	return cfg, ec, nil
}

// finishConfig fills the API key for the final provider, validates, and
// publishes cfg on env.
func finishConfig(cfg *config.Config, ec *envConfig, env *Environment) error {
	if key := ec.apiKeyFor(cfg.LLM.Provider); key != "" {
		cfg.LLM.APIKey = key
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	env.Config = cfg
	return nil
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error, cfg *config.Config) string {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		msg := err.Error()
		var searched []string
		if i := strings.Index(msg, "tried "); i >= 0 {
			searched = strings.Split(msg[i+len("tried "):], ", ")
		}
		return hints.ForConfigNotFound(searched)
	case errors.Is(err, llm.ErrMissingAPIKey), llm.IsAuthError(err):
		return hints.ForModelAuth(cfg.LLM.Provider)
	case errors.Is(err, dbcopilot.ErrConnection):
		return hints.ForDatabaseConnect(cfg.Database.Driver)
	case errors.Is(err, dbcopilot.ErrQuery):
		return hints.ForQuery()
	case errors.Is(err, dbcopilot.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrWriteReport):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}

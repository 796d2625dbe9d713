package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dbcopilot <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Answer questions over HTTP")
	fmt.Fprintln(w, "  ask        Answer one question from the terminal")
	fmt.Fprintln(w, "  report     Render a markdown file to a PDF report")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'dbcopilot help <command>' for details on a specific command.")
}

// printCommonUsage prints the flags shared by every command.
func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --env-file <path>     Dotenv file (default .env, skipped if missing)")
	fmt.Fprintln(w, "      --log-format <s>      Log format: text, json")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging, SQL and timings")
}

// printConnectionUsage prints database and model flags.
func printConnectionUsage(w io.Writer) {
	fmt.Fprintln(w, "Database:")
	fmt.Fprintln(w, "      --driver <s>          Driver: postgres, sqlite")
	fmt.Fprintln(w, "      --dsn <s>             Connection string or sqlite file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Model:")
	fmt.Fprintln(w, "      --provider <s>        Provider: azure, openai, anthropic")
	fmt.Fprintln(w, "  -m, --model <s>           Model name or Azure deployment")
	fmt.Fprintln(w, "      --endpoint <url>      Azure endpoint or API base URL")
}

// printReportFlagsUsage prints report rendering flags.
func printReportFlagsUsage(w io.Writer) {
	fmt.Fprintln(w, "Report:")
	fmt.Fprintln(w, "      --title <s>           Report title (default \"Business Report\")")
	fmt.Fprintln(w, "      --style <name>        Report style name")
	fmt.Fprintln(w, "      --interleave          Place tables where they appear in the text")
	fmt.Fprintln(w, "      --no-footer           Disable page number footer")
	fmt.Fprintln(w, "      --date-format <s>     Date: iso, european, us, long, or tokens")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D; [text] is literal")
	fmt.Fprintln(w, "  -t, --timeout <d>         PDF rendering timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
}

// printEnvUsage lists the environment variables.
func printEnvUsage(w io.Writer) {
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DBCOPILOT_CONFIG, DBCOPILOT_ADDR, DBCOPILOT_LOG_FORMAT")
	fmt.Fprintln(w, "  DBCOPILOT_DB_DRIVER, DBCOPILOT_DB_DSN, DBCOPILOT_DB_NAME, DBCOPILOT_DB_USER,")
	fmt.Fprintln(w, "  DBCOPILOT_DB_HOST, DBCOPILOT_DB_PORT, DATABASE_PASSWORD")
	fmt.Fprintln(w, "  DBCOPILOT_LLM_PROVIDER, DBCOPILOT_LLM_MODEL, DBCOPILOT_LLM_ENDPOINT, DBCOPILOT_LLM_API_KEY")
	fmt.Fprintln(w, "  AZURE_OPENAI_KEY, AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_CHAT_DEPLOYMENT")
	fmt.Fprintln(w, "  OPENAI_API_KEY, ANTHROPIC_API_KEY")
	fmt.Fprintln(w, "  DBCOPILOT_PROMPTS_FILE, DBCOPILOT_REQUEST_TIMEOUT, DBCOPILOT_REPORT_DIR,")
	fmt.Fprintln(w, "  DBCOPILOT_REPORT_ENABLED, DBCOPILOT_PAGE_SIZE, DBCOPILOT_TIMEOUT, DBCOPILOT_WORKERS")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Precedence: flags > environment > config file > defaults.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dbcopilot serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Answer questions over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /database_copilot    {\"query\": \"...\"} -> {\"response\": \"...\"}")
	fmt.Fprintln(w, "  GET  /healthz             {\"status\": \"ok\"}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default :8084)")
	fmt.Fprintln(w, "      --request-timeout <d> Per-request deadline (default 2m)")
	fmt.Fprintln(w, "      --reports             Write a PDF business report per request")
	fmt.Fprintln(w, "      --report-dir <dir>    Directory for reports (default reports)")
	fmt.Fprintln(w, "      --append-data         Append the SQL and result rows to reports")
	fmt.Fprintln(w, "  -w, --workers <n>         Concurrent report browsers (0 = auto)")
	fmt.Fprintln(w)
	printConnectionUsage(w)
	fmt.Fprintln(w)
	printReportFlagsUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
	fmt.Fprintln(w)
	printEnvUsage(w)
}

// printAskUsage prints usage for the ask command.
func printAskUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dbcopilot ask [flags] [question]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate SQL for a question, run it and print the answer.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  question    Natural-language question (words are joined)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --sql-only            Print the generated SQL without running it")
	fmt.Fprintln(w, "  -o, --report <path>       Write a PDF business report")
	fmt.Fprintln(w, "      --append-data         Append the SQL and result rows to the report")
	fmt.Fprintln(w)
	printConnectionUsage(w)
	fmt.Fprintln(w)
	printReportFlagsUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// printReportUsage prints usage for the report command.
func printReportUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dbcopilot report <input.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render a markdown file to a PDF report: text first, then every table.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF (default: input with .pdf)")
	fmt.Fprintln(w)
	printReportFlagsUsage(w)
	fmt.Fprintln(w)
	printCommonUsage(w)
}

// runHelp prints help for args[0], or the main usage.
func runHelp(args []string, w io.Writer) {
	if len(args) == 0 {
		printUsage(w)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(w)
	case "ask":
		printAskUsage(w)
	case "report":
		printReportUsage(w)
	case "version":
		fmt.Fprintln(w, "Usage: dbcopilot version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case "help":
		fmt.Fprintln(w, "Usage: dbcopilot help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	default:
		fmt.Fprintf(w, "Unknown command: %s\n\n", args[0])
		printUsage(w)
	}
}

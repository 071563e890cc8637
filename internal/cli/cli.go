package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/weftlabs/weft/internal/app"
)

// ExitError is an error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("weft", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
Weft - A dependency-graph flow execution engine.

Usage:
  weft [options] [FLOW_PATH]

Arguments:
  FLOW_PATH
    Path to a flow definition file (.hcl, .yaml, .yml or .json).

Options:
`)
		flagSet.PrintDefaults()
	}

	flowFlag := flagSet.String("flow", "", "Path to the flow definition file.")
	fFlag := flagSet.String("f", "", "Path to the flow definition file (shorthand).")
	sessionFlag := flagSet.String("session", "", "Session id propagated to session-aware vertices.")
	startFlag := flagSet.String("start", "", "Run only the vertex and its ancestry plus downstream closure.")
	stopFlag := flagSet.String("stop", "", "Run only up to the vertex and its ancestry.")
	outputsFlag := flagSet.String("outputs", "", "Comma-separated vertex ids or display names to collect.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *flowFlag != "" {
		path = *flowFlag
	} else if *fFlag != "" {
		path = *fFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Flow path determined.", "path", path)

	if path == "" {
		slog.Debug("No flow path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	var outputs []string
	if *outputsFlag != "" {
		for _, name := range strings.Split(*outputsFlag, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
	}

	config, err := app.NewConfig(app.Config{
		FlowPath:  path,
		SessionID: *sessionFlag,
		StartID:   *startFlag,
		StopID:    *stopFlag,
		Outputs:   outputs,
		LogFormat: logFormat,
		LogLevel:  logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mrhapile/launchpack/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const usageText = `
launchpack - bundles a scripted application into one distributable folder.

Usage:
  launchpack <command> [options] MANIFEST

Commands:
  check    Load the manifest and run its static consistency checks.
  build    Check, analyze, archive, and collect the bundle.
  verify   Rebuild into a scratch folder and compare against the build cache.

Arguments:
  MANIFEST
    Path to a build manifest (.hcl, .yaml or .yml).

Options:
`

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("launchpack", flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprint(output, usageText)
		flagSet.PrintDefaults()
	}

	outFlag := flagSet.String("out", "dist", "Directory under which the bundle folder is created.")
	cacheFlag := flagSet.String("cache", os.Getenv("LAUNCHPACK_CACHE"), "Path to the bbolt build cache. Empty disables it for build.")
	timestampFlag := flagSet.String("timestamp", "", "Fixed RFC3339 build time for reproducible output.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if len(args) == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	command := args[0]
	if command == "-h" || command == "--help" || command == "help" {
		flagSet.Usage()
		return nil, true, nil
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	if flagSet.NArg() == 0 {
		flagSet.Usage()
		return nil, true, nil
	}
	manifestPath := flagSet.Arg(0)

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

	var ts time.Time
	if *timestampFlag != "" {
		parsed, err := time.Parse(time.RFC3339, *timestampFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid timestamp %q: %v", *timestampFlag, err)}
		}
		ts = parsed
	}

	config, err := app.NewConfig(app.Config{
		Command:      command,
		ManifestPath: manifestPath,
		OutputDir:    *outFlag,
		CachePath:    *cacheFlag,
		Timestamp:    ts,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	return config, false, nil
}

// Package logging configures Waypoint's charmbracelet/log loggers.
//
// Log output goes to stderr so stdout stays free for status tables and
// JSON. While the full-screen dashboard owns the terminal, Redirect sends
// logs to a file (or discards them) instead.
//
//	logging.Setup(verbose, quiet, logging.JSONFromEnv(os.LookupEnv))
//	logger := logging.New("gateway")
//	logger.Debug("request", "op", "load")
//
// Call Setup before New: child loggers copy the default logger's level and
// formatter when they are created.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// FormatEnvVar selects the log formatter. "json" switches to NDJSON output.
const FormatEnvVar = "WAYPOINT_LOG_FORMAT"

// Level aliases so callers need not import charmbracelet/log.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

// Setup configures the default logger. verbose lowers the level to Debug and
// quiet raises it to Error; quiet wins when both are set.
func Setup(verbose, quiet, jsonFormat bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	if quiet {
		level = log.ErrorLevel
	}

	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if jsonFormat {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

// JSONFromEnv reports whether FormatEnvVar asks for JSON output.
func JSONFromEnv(lookup func(string) (string, bool)) bool {
	v, ok := lookup(FormatEnvVar)
	return ok && strings.EqualFold(strings.TrimSpace(v), "json")
}

// New returns a logger tagged with the component prefix. An empty component
// yields a logger without a prefix.
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// SetOutput overrides the default logger's writer. Tests use it to capture
// output.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Redirect points the default logger at path, appending, or discards output
// when path is empty. The returned func closes the file and restores stderr.
func Redirect(path string) (func() error, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return func() error {
			log.SetOutput(os.Stderr)
			return nil
		}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	log.SetOutput(f)
	return func() error {
		log.SetOutput(os.Stderr)
		return f.Close()
	}, nil
}

/*
PURPOSE:
  Provides a structured logger for meshbench.
  Wraps slog for consistent output.

REQUIREMENTS:
  User-specified:
  - "Sane" CLI output. Not spammy.
  - Missing or unreadable logs are warnings, never failures.

  Implementation-discovered:
  - CI wants machine-readable logs, so a JSON handler is selectable.
  - Logs go to stderr so `summary` output on stdout stays clean.

ARCHITECTURE INTEGRATION:
  - Used everywhere.
  - Configured by: internal/cli (root persistent flags)

ERROR HANDLING:
  - Unknown formats fall back to text.

IMPLEMENTATION RULES:
  - Use `log/slog` (Go 1.21+).

USAGE:
  output.Logger.Warn("message", "key", "value")

SELF-HEALING INSTRUCTIONS:
  - Ensure Go 1.21+ is used.

RELATED FILES:
  - internal/cli/root.go

MAINTENANCE:
  - Add handlers here, not at call sites.
*/

package output

import (
	"io"
	"log/slog"
	"os"
)

var Logger *slog.Logger

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// SetLogger allows overriding the default logger (e.g. for testing or config changes)
func SetLogger(l *slog.Logger) {
	Logger = l
}

// Configure replaces Logger with a handler for the given format ("text" or "json").
func Configure(w io.Writer, format string, verbose bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}

	var h slog.Handler
	switch format {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	SetLogger(slog.New(h))
}

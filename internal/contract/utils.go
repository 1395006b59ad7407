package contract

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Color variables for console output.
var (
	FatalColor   = color.New(color.FgRed, color.Bold) // FatalColor marks errors that stop the run.
	WarnColor    = color.New(color.FgYellow)          // WarnColor marks degraded but successful runs.
	SuccessColor = color.New(color.FgGreen)           // SuccessColor marks written artifacts.
)

// ConfigureOutput sets up colored status lines and the default slog logger.
// Color is only used when requested and stdout is a terminal.
func ConfigureOutput(useColors, verbose bool) {
	color.NoColor = !useColors || !term.IsTerminal(int(os.Stdout.Fd()))

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(NewLogger(os.Stderr, level))
}

// NewLogger returns a text slog logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It falls back to os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = FatalColor.Fprintf(os.Stderr, "❌ Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = WarnColor.Fprintf(os.Stderr, "⚠️  Warn %s: %v\n", msg, err)
}

// LogSuccess prints a status line for a written artifact to stderr.
func LogSuccess(format string, args ...any) {
	_, _ = SuccessColor.Fprintf(os.Stderr, "💾 %s\n", fmt.Sprintf(format, args...))
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

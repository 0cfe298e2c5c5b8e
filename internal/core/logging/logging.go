// Package logging builds the leveled, timestamped logger handed to each component.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to w. verbose enables debug output.
func New(w io.Writer, verbose bool) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Package applog provides the one process-wide structured logger, built
// with log/slog the way render/vulkan.go does in the teacher module.
package applog

import (
	"io"
	"log/slog"
	"os"
)

// New builds a *slog.Logger writing text-formatted records to w (or
// os.Stderr if w is nil). Level defaults to Info.
func New(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// Component returns a logger tagged with "component", the convention used
// throughout this module instead of ad-hoc prefixes.
func Component(log *slog.Logger, name string) *slog.Logger {
	return log.With("component", name)
}

// Package logging builds the application's slog logger.
package logging

import (
	"io"
	"log/slog"

	"github.com/MatusOllah/slogcolor"
	"github.com/fatih/color"
)

// New returns a colourised slog logger writing to w at the given level
func New(w io.Writer, level slog.Level) *slog.Logger {
	opts := *slogcolor.DefaultOptions // copy; the default is shared
	opts.Level = level
	opts.MsgColor = color.New(color.FgMagenta)
	opts.SrcFileMode = slogcolor.Nop
	return slog.New(slogcolor.NewHandler(w, &opts))
}

// Discard returns a logger that drops everything, for tests
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package sfs

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger builds the process-wide zerolog.Logger used by cmd/sfs:
// a human-readable console writer when stdout is a terminal, otherwise
// plain JSON lines — the same split the pack's reva runtime makes between
// interactive and piped output. Every session is tagged with its id so
// concurrent log lines from (hypothetically) interleaved sessions can be
// told apart, though spec.md's concurrency model is one session at a time.
func NewLogger(sessionID string) zerolog.Logger {
	var writer = os.Stdout

	if isatty.IsTerminal(writer.Fd()) {
		console := zerolog.ConsoleWriter{Out: colorable.NewColorable(writer), TimeFormat: "15:04:05"}
		return zerolog.New(console).With().Timestamp().Str("session", sessionID).Logger()
	}

	return zerolog.New(writer).With().Timestamp().Str("session", sessionID).Logger()
}

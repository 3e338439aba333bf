package book

import (
	"log/slog"
	"os"
)

// logger is shared by the sequencer loop and the demo binary. The default
// writes JSON to stdout.
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger replaces the package logger. A nil logger is ignored so callers
// can pass through an optional value unchecked.
func SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	logger = l
}

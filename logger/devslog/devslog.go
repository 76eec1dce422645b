package devslog

import (
	"io"
	"log/slog"

	"github.com/golang-cz/devslog"
)

// NewHandler is the human-readable handler for local runs.
// Source locations are only printed at debug level.
func NewHandler(w io.Writer, level slog.Level) slog.Handler {
	return devslog.NewHandler(w, &devslog.Options{
		HandlerOptions: &slog.HandlerOptions{
			AddSource: level <= slog.LevelDebug,
			Level:     level,
		},
		NewLineAfterLog:    true,
		MaxErrorStackTrace: 20,
		MaxSlicePrintSize:  20,
		SortKeys:           true,
		TimeFormat:         "[15:04:05.000]",
		DebugColor:         devslog.Magenta,
		StringerFormatter:  true,
	})
}

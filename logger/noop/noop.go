package noop

import "log/slog"

// NewNoop returns a logger that drops every record; handy in unit tests.
func NewNoop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

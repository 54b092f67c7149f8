package pipeline

import "log/slog"

func noopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

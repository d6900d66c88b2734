package logger

import (
	"log/slog"
	"os"
)

// New returns the service-wide structured logger. JSON output so log
// aggregation can index run ids and rule ids.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

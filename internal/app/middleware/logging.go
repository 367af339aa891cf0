package middleware

import (
	"context"
	"log/slog"
	"time"

	"bookingengine/internal/app/commands"
	"bookingengine/internal/app/queries"
)

// Logging records every dispatched command with its duration and outcome.
func Logging(logger *slog.Logger) CommandMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, cmd)
			logResult(ctx, logger, "command", cmd.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func QueryLogging(logger *slog.Logger) QueryMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			start := time.Now()
			res, err := nextFn(ctx, q)
			logResult(ctx, logger, "query", q.Key(), time.Since(start), err)
			return res, err
		})
	}
}

func logResult(ctx context.Context, logger *slog.Logger, kind, key string, took time.Duration, err error) {
	attrs := []any{slog.String(kind, key), slog.Duration("duration", took)}
	if err != nil {
		logger.WarnContext(ctx, kind+" failed", append(attrs, slog.Any("err", err))...)
		return
	}
	logger.DebugContext(ctx, kind+" handled", attrs...)
}

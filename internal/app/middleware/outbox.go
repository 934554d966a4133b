package middleware

import (
	"context"

	"tourhub/internal/app/commands"
	"tourhub/internal/app/outbox"
)

// OutboxFlush gives each dispatch its own record scope and flushes it once the
// command has succeeded. Records of a failed command are discarded.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			ctx = outbox.WithScope(ctx)
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				if d, ok := box.(outbox.Discarder); ok {
					d.Discard(ctx)
				}
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}

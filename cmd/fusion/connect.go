package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
)

const (
	connectAttempts   = 5
	connectBackoff    = 200 * time.Millisecond
	connectMaxBackoff = 5 * time.Second
)

// connect calls dial until it succeeds, backing off between attempts. Backing
// services started alongside the process are often not accepting connections yet.
func connect[T any](ctx context.Context, logger *slog.Logger, component string, dial func(context.Context) (T, error)) (T, error) {
	backoff := connectBackoff
	var (
		zero T
		err  error
	)
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		var v T
		if v, err = dial(ctx); err == nil {
			return v, nil
		}
		if attempt == connectAttempts {
			break
		}
		logger.Warn("connect failed, retrying", "component", component, "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return zero, ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, connectMaxBackoff)
	}
	return zero, fmt.Errorf("%s: giving up after %d attempts: %w", component, connectAttempts, err)
}

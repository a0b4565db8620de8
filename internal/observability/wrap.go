// Package observability implements the cross-cutting decorator described in
// spec.md §4.8: every external call is wrapped with structured logs bound
// to a stable correlation_id and a duration measurement. It never swallows
// errors — it only observes, per spec.md §4.8.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Wrap times fn, emitting a structured start/end log pair bound to
// correlationID, and records the outcome in the process-level metrics
// registry. Grounded on pkg/queue/executor.go's
// publishStageStatus/publishSessionProgress helpers and the teacher's
// slog.With(...) correlation pattern used throughout.
func Wrap[T any](ctx context.Context, op string, correlationID string, fn func(ctx context.Context) (T, error)) (T, error) {
	log := slog.Default().With("op", op, "correlation_id", correlationID)
	log.Debug("op_start")
	start := time.Now()

	result, err := fn(ctx)

	dur := time.Since(start)
	Metrics.Observe(op, dur, err == nil)
	if err != nil {
		log.Error("op_failed", "duration", dur, "error", err)
		return result, err
	}
	log.Debug("op_ok", "duration", dur)
	return result, nil
}

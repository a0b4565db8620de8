// Package cleanup enforces the retention policy on AnalysisRecord rows,
// soft-deleting every row older than the configured window, whatever its
// status.
// Grounded on pkg/cleanup/service.go's periodic-sweep shape.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/matchmind/matchmind/internal/config"
	"github.com/matchmind/matchmind/internal/store"
)

// RecordStore is the subset of store.RecordService the sweep loop depends
// on, narrowed to an interface so tests can substitute an in-memory fake
// instead of a real Postgres-backed RecordService.
type RecordStore interface {
	SoftDeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

var _ RecordStore = (*store.RecordService)(nil)

// Service periodically soft-deletes analysis records past the retention
// window. Idempotent and safe to run from multiple instances.
type Service struct {
	cfg     config.RetentionConfig
	records RecordStore

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService constructs a Service.
func NewService(cfg config.RetentionConfig, records RecordStore) *Service {
	return &Service{cfg: cfg, records: records}
}

// Start launches the background sweep loop. A no-op if retention is
// disabled or Start was already called.
func (s *Service) Start(ctx context.Context) {
	if !s.cfg.Enabled || s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)

	slog.Info("cleanup service started", "retention_days", s.cfg.RetentionDays, "interval", s.cfg.SweepInterval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.RetentionDays)
	count, err := s.records.SoftDeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Error("retention sweep failed", "error", err)
		return
	}
	if count > 0 {
		slog.Info("retention: soft-deleted stale analysis records", "count", count)
	}
}

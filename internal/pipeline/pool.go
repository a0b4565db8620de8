package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/matchmind/matchmind/internal/config"
)

// WorkerPool manages a fixed set of Workers plus the orphan scanner,
// mirroring pkg/queue/pool.go's WorkerPool.
type WorkerPool struct {
	podID    string
	queue    TaskQueue
	executor TaskExecutor
	cfg      config.QueueConfig
	workers  []*Worker

	orphans *OrphanScanner

	mu      sync.Mutex
	started bool
}

// NewWorkerPool constructs a WorkerPool.
func NewWorkerPool(podID string, queue TaskQueue, executor TaskExecutor, cfg config.QueueConfig) *WorkerPool {
	return &WorkerPool{
		podID:    podID,
		queue:    queue,
		executor: executor,
		cfg:      cfg,
		workers:  make([]*Worker, 0, cfg.WorkerCount),
		orphans:  NewOrphanScanner(queue, cfg.OrphanDetectionInterval, cfg.OrphanThreshold),
	}
}

// Start spawns worker goroutines and the orphan scanner. Safe to call once;
// a second call is a no-op.
func (p *WorkerPool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		slog.Warn("worker pool already started", "pod_id", p.podID)
		return
	}
	p.started = true

	slog.Info("starting worker pool", "pod_id", p.podID, "worker_count", p.cfg.WorkerCount)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		w := NewWorker(fmt.Sprintf("%s-worker-%d", p.podID, i), p.queue, p.executor, p.cfg)
		p.workers = append(p.workers, w)
	}
	for _, w := range p.workers {
		w.Start(ctx)
	}
	p.orphans.Start(ctx)
}

// Stop signals all workers and the orphan scanner to stop and waits for
// them to finish their current work.
func (p *WorkerPool) Stop() {
	slog.Info("stopping worker pool gracefully", "pod_id", p.podID)
	for _, w := range p.workers {
		w.Stop()
	}
	p.orphans.Stop()
	slog.Info("worker pool stopped", "pod_id", p.podID)
}

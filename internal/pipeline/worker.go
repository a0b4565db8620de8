package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/matchmind/matchmind/internal/config"
	"github.com/matchmind/matchmind/internal/core"
)

// Worker is a single queue worker polling for and executing
// AnalysisRequests, mirroring pkg/queue/worker.go's Worker.
type Worker struct {
	id       string
	queue    TaskQueue
	executor TaskExecutor
	cfg      config.QueueConfig

	stopCh chan struct{}
	done   chan struct{}
}

// NewWorker constructs a Worker.
func NewWorker(id string, queue TaskQueue, executor TaskExecutor, cfg config.QueueConfig) *Worker {
	return &Worker{id: id, queue: queue, executor: executor, cfg: cfg, stopCh: make(chan struct{}), done: make(chan struct{})}
}

// Start begins the worker's polling loop in a goroutine.
func (w *Worker) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop signals the worker to stop and blocks until it exits.
func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.done
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	log := slog.With("worker_id", w.id)
	log.Info("worker started")

	for {
		select {
		case <-w.stopCh:
			log.Info("worker shutting down")
			return
		case <-ctx.Done():
			return
		default:
			if err := w.pollAndProcess(ctx); err != nil {
				if errors.Is(err, core.ErrNoRequestsAvailable) {
					w.sleep(w.pollInterval())
					continue
				}
				log.Error("poll error", "error", err)
				w.sleep(time.Second)
			}
		}
	}
}

func (w *Worker) sleep(d time.Duration) {
	select {
	case <-w.stopCh:
	case <-time.After(d):
	}
}

func (w *Worker) pollInterval() time.Duration {
	jitter := time.Duration(0)
	if w.cfg.PollIntervalJitter > 0 {
		jitter = time.Duration(rand.Int64N(int64(w.cfg.PollIntervalJitter)))
	}
	return w.cfg.PollInterval + jitter
}

func (w *Worker) pollAndProcess(ctx context.Context) error {
	req, err := w.queue.ClaimNext(ctx, w.id)
	if err != nil {
		return err
	}

	log := slog.With("worker_id", w.id, "request_id", req.RequestID, "match_id", req.MatchID)
	log.Info("request claimed")

	result := w.executor.Execute(ctx, req)

	if err := w.queue.Complete(context.Background(), req.RequestID); err != nil {
		log.Error("failed marking request complete", "error", err)
		return err
	}
	log.Info("request processed", "status", result.Status, "degraded", result.Degraded)
	return nil
}

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchmind/matchmind/internal/core"
)

func TestWorkerPoolSpawnsConfiguredWorkerCountAndDrainsQueue(t *testing.T) {
	queue := newFakeQueue(
		core.AnalysisRequest{RequestID: "req-1"},
		core.AnalysisRequest{RequestID: "req-2"},
		core.AnalysisRequest{RequestID: "req-3"},
	)
	executor := &fakeExecutor{result: core.TaskResult{Status: core.StatusCompleted}}
	cfg := testQueueConfig()
	cfg.WorkerCount = 3

	pool := NewWorkerPool("pod-a", queue, executor, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	require.Eventually(t, func() bool {
		return queue.completedCount() == 3
	}, time.Second, 2*time.Millisecond)

	assert.Len(t, pool.workers, 3)
	pool.Stop()
}

func TestWorkerPoolStartIsIdempotent(t *testing.T) {
	queue := newFakeQueue()
	executor := &fakeExecutor{result: core.TaskResult{Status: core.StatusCompleted}}
	cfg := testQueueConfig()
	cfg.WorkerCount = 2

	pool := NewWorkerPool("pod-a", queue, executor, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	pool.Start(ctx)

	assert.Len(t, pool.workers, 2, "a second Start call must not spawn additional workers")
	pool.Stop()
}

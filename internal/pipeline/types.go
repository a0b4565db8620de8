package pipeline

import (
	"context"
	"time"

	"github.com/matchmind/matchmind/internal/core"
	"github.com/matchmind/matchmind/internal/store"
)

// TaskExecutor runs a single AnalysisRequest through the AnalyzeMatch state
// machine. *Executor is the production implementation; tests substitute a
// stub, mirroring pkg/queue/types.go's SessionExecutor interface that lets
// worker/pool tests run without a real GameAPI/LLM/Store stack.
type TaskExecutor interface {
	Execute(ctx context.Context, req core.AnalysisRequest) core.TaskResult
}

// TaskQueue is the subset of store.QueueService the worker pool and orphan
// scanner depend on, narrowed to an interface for the same reason.
type TaskQueue interface {
	ClaimNext(ctx context.Context, workerID string) (core.AnalysisRequest, error)
	Complete(ctx context.Context, requestID string) error
	Orphaned(ctx context.Context, threshold time.Duration) ([]string, error)
	Release(ctx context.Context, requestID string) error
}

var (
	_ TaskExecutor = (*Executor)(nil)
	_ TaskQueue    = (*store.QueueService)(nil)
)

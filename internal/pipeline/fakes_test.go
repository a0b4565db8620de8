package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/matchmind/matchmind/internal/core"
)

// fakeExecutor is a stub TaskExecutor, mirroring
// pkg/queue/executor_stub.go's StubExecutor: it records what it was asked
// to run and returns a canned result, with no collaborator calls.
type fakeExecutor struct {
	mu      sync.Mutex
	calls   []core.AnalysisRequest
	result  core.TaskResult
	execErr error
}

func (f *fakeExecutor) Execute(_ context.Context, req core.AnalysisRequest) core.TaskResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.result
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeQueue is an in-memory TaskQueue, enough to drive Worker/WorkerPool/
// OrphanScanner without a real Postgres instance.
type fakeQueue struct {
	mu        sync.Mutex
	pending   []core.AnalysisRequest
	claimedAt map[string]time.Time
	completed map[string]bool
	released  []string
}

func newFakeQueue(reqs ...core.AnalysisRequest) *fakeQueue {
	return &fakeQueue{
		pending:   append([]core.AnalysisRequest{}, reqs...),
		claimedAt: make(map[string]time.Time),
		completed: make(map[string]bool),
	}
}

func (q *fakeQueue) ClaimNext(_ context.Context, _ string) (core.AnalysisRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return core.AnalysisRequest{}, core.ErrNoRequestsAvailable
	}
	req := q.pending[0]
	q.pending = q.pending[1:]
	q.claimedAt[req.RequestID] = time.Now()
	return req, nil
}

func (q *fakeQueue) Complete(_ context.Context, requestID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed[requestID] = true
	return nil
}

func (q *fakeQueue) Orphaned(_ context.Context, threshold time.Duration) ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var ids []string
	cutoff := time.Now().Add(-threshold)
	for id, claimedAt := range q.claimedAt {
		if !q.completed[id] && claimedAt.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (q *fakeQueue) Release(_ context.Context, requestID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.claimedAt, requestID)
	q.released = append(q.released, requestID)
	q.pending = append(q.pending, core.AnalysisRequest{RequestID: requestID})
	return nil
}

func (q *fakeQueue) completedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.completed)
}

package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchmind/matchmind/internal/core"
)

func TestOrphanScannerReleasesStaleClaims(t *testing.T) {
	queue := newFakeQueue()
	// Simulate a request a worker claimed long enough ago to be orphaned.
	req, err := queue.ClaimNext(context.Background(), "worker-dead")
	require.NoError(t, err)
	queue.claimedAt[req.RequestID] = time.Now().Add(-time.Hour)

	scanner := NewOrphanScanner(queue, 5*time.Millisecond, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scanner.Start(ctx)

	require.Eventually(t, func() bool {
		queue.mu.Lock()
		defer queue.mu.Unlock()
		return len(queue.released) == 1
	}, time.Second, 2*time.Millisecond)

	scanner.Stop()
	assert.Equal(t, req.RequestID, queue.released[0])
}

func TestOrphanScannerLeavesFreshClaimsAlone(t *testing.T) {
	queue := newFakeQueue()
	req, err := queue.ClaimNext(context.Background(), "worker-alive")
	require.NoError(t, err)
	_ = req

	scanner := NewOrphanScanner(queue, 5*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scanner.Start(ctx)

	// Give the scanner a couple of ticks to run, then confirm it released nothing.
	time.Sleep(30 * time.Millisecond)
	scanner.Stop()

	queue.mu.Lock()
	defer queue.mu.Unlock()
	assert.Empty(t, queue.released)
}

func TestOrphanScannerStopIsIdempotentWithMultipleCallers(t *testing.T) {
	queue := newFakeQueue()
	scanner := NewOrphanScanner(queue, time.Minute, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	scanner.Start(ctx)

	done := make(chan struct{})
	go func() {
		scanner.Stop()
		close(done)
	}()
	scanner.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("concurrent Stop callers did not both return")
	}
}

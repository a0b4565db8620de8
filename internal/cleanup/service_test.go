package cleanup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchmind/matchmind/internal/config"
)

type fakeRecordStore struct {
	calls   int32
	cutoffs []time.Time
	err     error
}

func (f *fakeRecordStore) SoftDeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	atomic.AddInt32(&f.calls, 1)
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func (f *fakeRecordStore) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

func TestServiceStartIsNoOpWhenRetentionDisabled(t *testing.T) {
	store := &fakeRecordStore{}
	svc := NewService(config.RetentionConfig{Enabled: false}, store)

	svc.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	svc.Stop()

	assert.Equal(t, 0, store.callCount())
}

func TestServiceSweepsImmediatelyOnStart(t *testing.T) {
	store := &fakeRecordStore{}
	svc := NewService(config.RetentionConfig{Enabled: true, RetentionDays: 90, SweepInterval: time.Hour}, store)

	svc.Start(context.Background())
	require.Eventually(t, func() bool { return store.callCount() >= 1 }, time.Second, 2*time.Millisecond)
	svc.Stop()
}

func TestServiceStartIsIdempotent(t *testing.T) {
	store := &fakeRecordStore{}
	svc := NewService(config.RetentionConfig{Enabled: true, RetentionDays: 90, SweepInterval: time.Hour}, store)

	svc.Start(context.Background())
	svc.Start(context.Background())
	svc.Stop()
}

func TestServiceSweepToleratesStoreErrors(t *testing.T) {
	store := &fakeRecordStore{err: errors.New("db unavailable")}
	svc := NewService(config.RetentionConfig{Enabled: true, RetentionDays: 90, SweepInterval: time.Hour}, store)

	svc.Start(context.Background())
	require.Eventually(t, func() bool { return store.callCount() >= 1 }, time.Second, 2*time.Millisecond)
	svc.Stop()
}

func TestServiceStopBeforeStartIsSafe(t *testing.T) {
	svc := NewService(config.RetentionConfig{Enabled: true}, &fakeRecordStore{})
	assert.NotPanics(t, func() { svc.Stop() })
}

package gameapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchmind/matchmind/internal/core"
	"github.com/matchmind/matchmind/internal/ratelimit"
)

func unlimitedBuckets() *ratelimit.Registry {
	return ratelimit.NewRegistry(func(string) *ratelimit.Bucket {
		return ratelimit.NewBucket(1000, time.Millisecond, 1000, time.Millisecond)
	})
}

func TestRetryAfterDefaultsToOneSecond(t *testing.T) {
	assert.Equal(t, time.Second, retryAfter(""))
	assert.Equal(t, time.Second, retryAfter("not-a-number"))
	assert.Equal(t, time.Second, retryAfter("0"))
	assert.Equal(t, 5*time.Second, retryAfter("5"))
}

func TestGetMatchDetailSucceedsOnFirstTry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/match/m-1", r.URL.Path)
		assert.Equal(t, "tok-123", r.Header.Get("X-API-Token"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"match_id":"m-1"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIToken: "tok-123", HTTPClient: srv.Client()}, unlimitedBuckets())
	detail, err := c.GetMatchDetail(context.Background(), "m-1", "na1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", detail.MatchID)
}

func TestCallRetriesOnServerErrorThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"match_id":"m-1"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIToken: "tok", MaxTries: 5, HTTPClient: srv.Client()}, unlimitedBuckets())
	detail, err := c.GetMatchDetail(context.Background(), "m-1", "na1")
	require.NoError(t, err)
	assert.Equal(t, "m-1", detail.MatchID)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCallDoesNotRetryOnNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("no such match"))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIToken: "tok", MaxTries: 3, HTTPClient: srv.Client()}, unlimitedBuckets())
	_, err := c.GetMatchDetail(context.Background(), "m-missing", "na1")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "a 404 must be classified permanent and not retried")

	var pe *core.PipelineError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, core.KindPermanentVendor, pe.Kind)
}

func TestCallGivesUpAfterMaxTries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIToken: "tok", MaxTries: 2, HTTPClient: srv.Client()}, unlimitedBuckets())
	_, err := c.GetMatchDetail(context.Background(), "m-1", "na1")
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

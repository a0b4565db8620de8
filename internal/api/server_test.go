package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchmind/matchmind/internal/core"
	"github.com/matchmind/matchmind/internal/dispatcher"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeRecordGetter struct {
	rec core.AnalysisRecord
	err error
}

func (f fakeRecordGetter) GetRecord(context.Context, core.RecordKey) (core.AnalysisRecord, error) {
	return f.rec, f.err
}

type fakeDispatcher struct {
	ack dispatcher.Ack
	err error
}

func (f fakeDispatcher) Dispatch(context.Context, dispatcher.Command) (dispatcher.Ack, error) {
	return f.ack, f.err
}

func newTestServer(db Pinger, records RecordGetter, disp AnalyzeDispatcher) *Server {
	return NewServer(db, records, disp)
}

func TestHealthReturnsOKWhenDatabaseIsReachable(t *testing.T) {
	srv := newTestServer(fakePinger{}, fakeRecordGetter{}, fakeDispatcher{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthReturnsServiceUnavailableWhenPingFails(t *testing.T) {
	srv := newTestServer(fakePinger{err: errors.New("connection refused")}, fakeRecordGetter{}, fakeDispatcher{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetRecordReturnsRecordOnSuccess(t *testing.T) {
	want := core.AnalysisRecord{MatchID: "m-1", RequesterID: "u-1", Status: core.StatusCompleted}
	srv := newTestServer(fakePinger{}, fakeRecordGetter{rec: want}, fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/records/m-1/u-1", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got core.AnalysisRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, want.MatchID, got.MatchID)
}

func TestGetRecordReturnsNotFoundWhenMissing(t *testing.T) {
	srv := newTestServer(fakePinger{}, fakeRecordGetter{err: core.ErrNotFound}, fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/records/m-missing/u-1", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecordReturnsInternalErrorOnOtherFailures(t *testing.T) {
	srv := newTestServer(fakePinger{}, fakeRecordGetter{err: errors.New("db exploded")}, fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/records/m-1/u-1", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPostAnalyzeReturnsAcceptedOnSuccess(t *testing.T) {
	srv := newTestServer(fakePinger{}, fakeRecordGetter{}, fakeDispatcher{ack: dispatcher.Ack{RequestID: "req-123"}})

	body, _ := json.Marshal(dispatcher.Command{MatchID: "m-1", Region: "na1", RequesterID: "u-1", Channel: "C1"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "req-123", got["request_id"])
}

func TestPostAnalyzeReturnsBadRequestOnValidationError(t *testing.T) {
	srv := newTestServer(fakePinger{}, fakeRecordGetter{}, fakeDispatcher{err: core.NewValidationError("match_id", "required")})

	body, _ := json.Marshal(dispatcher.Command{Region: "na1", RequesterID: "u-1", Channel: "C1"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostAnalyzeReturnsBadRequestOnMalformedJSON(t *testing.T) {
	srv := newTestServer(fakePinger{}, fakeRecordGetter{}, fakeDispatcher{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/analyze", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostAnalyzeReturnsInternalErrorOnDispatchFailure(t *testing.T) {
	srv := newTestServer(fakePinger{}, fakeRecordGetter{}, fakeDispatcher{err: errors.New("queue unavailable")})

	body, _ := json.Marshal(dispatcher.Command{MatchID: "m-1", Region: "na1", RequesterID: "u-1", Channel: "C1"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/internal/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMetricsReturnsOK(t *testing.T) {
	srv := newTestServer(fakePinger{}, fakeRecordGetter{}, fakeDispatcher{})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/internal/metrics", nil)
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

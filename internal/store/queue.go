package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matchmind/matchmind/internal/core"
)

// QueueService manages the analysis_request FIFO queue: the dispatcher
// enqueues, and workers claim the oldest unclaimed row with
// `FOR UPDATE SKIP LOCKED`, following pkg/queue/worker.go's
// claimNextSession pattern (ent's tx + ForUpdate(sql.SkipLocked) translated
// to a plain database/sql transaction since no generated ent client is
// available here).
type QueueService struct {
	db *sql.DB
}

// NewQueueService constructs a QueueService over an open connection pool.
func NewQueueService(db *DB) *QueueService {
	return &QueueService{db: db.Conn()}
}

// Enqueue inserts a new analysis_request row. RequestID must be unique;
// re-enqueueing the same request_id is a no-op conflict, not an error,
// mirroring the dispatcher's at-least-once delivery tolerance.
func (q *QueueService) Enqueue(ctx context.Context, req core.AnalysisRequest) error {
	profile, err := json.Marshal(req.UserProfile)
	if err != nil {
		return fmt.Errorf("marshaling user_profile: %w", err)
	}

	_, err = q.db.ExecContext(ctx, `
		INSERT INTO analysis_request
			(request_id, match_id, region, requester_id, interaction_token, application_id, requested_at, user_profile, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		ON CONFLICT (request_id) DO NOTHING`,
		req.RequestID, req.MatchID, req.Region, req.RequesterID, req.InteractionToken,
		req.ApplicationID, req.RequestedAt, profile,
	)
	if err != nil {
		return fmt.Errorf("enqueueing analysis request: %w", err)
	}
	return nil
}

// ClaimNext atomically claims the oldest pending request for workerID,
// returning core.ErrNoRequestsAvailable when the queue is empty.
func (q *QueueService) ClaimNext(ctx context.Context, workerID string) (core.AnalysisRequest, error) {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return core.AnalysisRequest{}, fmt.Errorf("starting claim transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		req     core.AnalysisRequest
		profile []byte
	)
	row := tx.QueryRowContext(ctx, `
		SELECT request_id, match_id, region, requester_id, interaction_token, application_id, requested_at, user_profile
		FROM analysis_request
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED`)

	if err := row.Scan(&req.RequestID, &req.MatchID, &req.Region, &req.RequesterID,
		&req.InteractionToken, &req.ApplicationID, &req.RequestedAt, &profile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.AnalysisRequest{}, core.ErrNoRequestsAvailable
		}
		return core.AnalysisRequest{}, fmt.Errorf("querying pending request: %w", err)
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &req.UserProfile); err != nil {
			return core.AnalysisRequest{}, fmt.Errorf("decoding user_profile: %w", err)
		}
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE analysis_request SET status = 'claimed', claimed_at = $1, claimed_by = $2
		WHERE request_id = $3`, now, workerID, req.RequestID); err != nil {
		return core.AnalysisRequest{}, fmt.Errorf("claiming request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.AnalysisRequest{}, fmt.Errorf("committing claim: %w", err)
	}
	return req, nil
}

// Release marks a claimed request back to pending, used when a worker
// crashes mid-processing and the orphan scanner reclaims it.
func (q *QueueService) Release(ctx context.Context, requestID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE analysis_request SET status = 'pending', claimed_at = NULL, claimed_by = NULL
		WHERE request_id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("releasing request %s: %w", requestID, err)
	}
	return nil
}

// Complete marks a claimed request as finished, removing it from future
// orphan scans.
func (q *QueueService) Complete(ctx context.Context, requestID string) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE analysis_request SET status = 'done' WHERE request_id = $1`, requestID)
	if err != nil {
		return fmt.Errorf("completing request %s: %w", requestID, err)
	}
	return nil
}

// Orphaned returns request_ids claimed longer than threshold ago, for the
// orphan scanner to reclaim, grounded on pkg/queue's orphan-detection
// sweep. Staleness is judged by claimed_at alone; there is no heartbeat
// column.
func (q *QueueService) Orphaned(ctx context.Context, threshold time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-threshold)
	rows, err := q.db.QueryContext(ctx, `
		SELECT request_id FROM analysis_request
		WHERE status = 'claimed' AND claimed_at < $1`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying orphaned requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning orphaned request id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

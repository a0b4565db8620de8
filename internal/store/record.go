package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/matchmind/matchmind/internal/core"
)

// RecordService implements the Store collaborator's persist/update/get
// contract from spec.md §4.6, keyed on (match_id, requester_id). Grounded
// on pkg/services/session_service.go's CreateSession/UpdateSessionStatus/
// GetSession, translated from ent queries to hand-written SQL (see
// DESIGN.md for why).
type RecordService struct {
	db *sql.DB
}

// NewRecordService constructs a RecordService over an open connection pool.
func NewRecordService(db *DB) *RecordService {
	return &RecordService{db: db.Conn()}
}

// UpsertRecord inserts a new `analysis` row in `processing` status, or is a
// no-op if one already exists for this key — the Persist stage's
// idempotent insert described in spec.md §4.2 (step 3, "insert-or-skip"),
// and §3's "AnalysisRecord is created in stage 3 (processing)".
func (r *RecordService) UpsertRecord(ctx context.Context, key core.RecordKey, mode string) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO analysis (match_id, requester_id, status, mode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (match_id, requester_id) DO NOTHING`,
		key.MatchID, key.RequesterID, core.StatusProcessing, mode, now,
	)
	if err != nil {
		return fmt.Errorf("upserting analysis record %s/%s: %w", key.MatchID, key.RequesterID, err)
	}
	return nil
}

// UpdateStatus transitions a record's status, optionally writing the
// report body (score_data/narrative/tts/emotion/llm_metadata/degradation)
// when report is non-nil, and an error_message when errMsg is non-empty.
// Mirrors UpdateSessionStatus/updateSessionTerminalStatus's partial-update
// shape.
func (r *RecordService) UpdateStatus(ctx context.Context, key core.RecordKey, status core.Status, rec *core.AnalysisRecord, errMsg string) error {
	now := time.Now()

	if rec == nil {
		_, err := r.db.ExecContext(ctx, `
			UPDATE analysis SET status = $1, error_message = NULLIF($2, ''), updated_at = $3
			WHERE match_id = $4 AND requester_id = $5`,
			status, errMsg, now, key.MatchID, key.RequesterID,
		)
		if err != nil {
			return fmt.Errorf("updating analysis status %s/%s: %w", key.MatchID, key.RequesterID, err)
		}
		return nil
	}

	_, err := r.db.ExecContext(ctx, `
		UPDATE analysis SET
			status = $1,
			algorithm_version = $2,
			score_data = $3,
			narrative_text = $4,
			tts_summary = $5,
			emotion_tag = $6,
			llm_metadata = $7,
			degradation_flags = $8,
			error_message = NULLIF($9, ''),
			updated_at = $10
		WHERE match_id = $11 AND requester_id = $12`,
		status, rec.AlgorithmVersion, rec.ScoreData, rec.NarrativeText, rec.TTSSummary,
		rec.EmotionTag, rec.LLMMetadata, rec.Degradation, errMsg, now,
		key.MatchID, key.RequesterID,
	)
	if err != nil {
		return fmt.Errorf("updating analysis record %s/%s: %w", key.MatchID, key.RequesterID, err)
	}
	return nil
}

// GetRecord fetches the current analysis row, returning core.ErrNotFound
// if it does not exist or was soft-deleted.
func (r *RecordService) GetRecord(ctx context.Context, key core.RecordKey) (core.AnalysisRecord, error) {
	var rec core.AnalysisRecord
	row := r.db.QueryRowContext(ctx, `
		SELECT match_id, requester_id, status, mode, algorithm_version, score_data,
		       narrative_text, tts_summary, emotion_tag, llm_metadata, degradation_flags,
		       COALESCE(error_message, ''), created_at, updated_at
		FROM analysis
		WHERE match_id = $1 AND requester_id = $2 AND deleted_at IS NULL`,
		key.MatchID, key.RequesterID,
	)
	if err := row.Scan(&rec.MatchID, &rec.RequesterID, &rec.Status, &rec.Mode, &rec.AlgorithmVersion,
		&rec.ScoreData, &rec.NarrativeText, &rec.TTSSummary, &rec.EmotionTag, &rec.LLMMetadata,
		&rec.Degradation, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.AnalysisRecord{}, core.ErrNotFound
		}
		return core.AnalysisRecord{}, fmt.Errorf("fetching analysis record %s/%s: %w", key.MatchID, key.RequesterID, err)
	}
	return rec, nil
}

// SoftDeleteOlderThan marks records older than cutoff as deleted, for
// internal/cleanup's retention sweep — mirrors
// SessionService.SoftDeleteOldSessions.
func (r *RecordService) SoftDeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE analysis SET deleted_at = now()
		WHERE deleted_at IS NULL AND created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("soft-deleting stale analysis records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}

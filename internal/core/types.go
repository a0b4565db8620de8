// Package core defines the data model shared across the analysis pipeline:
// AnalysisRequest, MatchBundle, PlayerScore, AnalysisReport and AnalysisRecord.
package core

import (
	"encoding/json"
	"time"
)

// EmotionTag is the enumerated narrative tone attached to an AnalysisReport.
type EmotionTag string

const (
	EmotionExcited     EmotionTag = "excited"
	EmotionEncouraging EmotionTag = "encouraging"
	EmotionCritical    EmotionTag = "critical"
	EmotionNeutral     EmotionTag = "neutral"
	EmotionSympathetic EmotionTag = "sympathetic"
)

// Status is the AnalysisRecord lifecycle state, mirrored 1:1 in the `analysis`
// table's status column.
type Status string

const (
	StatusPending            Status = "pending"
	StatusProcessing         Status = "processing"
	StatusAnalyzing          Status = "analyzing"
	StatusDelivering         Status = "delivering"
	StatusCompleted          Status = "completed"
	StatusCompletedNoDeliver Status = "completed_no_delivery"
	StatusFailed             Status = "failed"
)

// AnalysisRequest is the inbound, immutable request enqueued by the dispatcher.
type AnalysisRequest struct {
	RequestID        string         `json:"request_id"`
	MatchID          string         `json:"match_id"`
	Region           string         `json:"region"`
	RequesterID      string         `json:"requester_id"`
	InteractionToken string         `json:"interaction_token"`
	ApplicationID    string         `json:"application_id"`
	RequestedAt      time.Time      `json:"requested_at"`
	UserProfile      map[string]any `json:"user_profile,omitempty"`
}

// Key identifies the (match_id, requester_id) primary key shared by
// AnalysisRecord and idempotent Store operations.
func (r AnalysisRequest) Key() RecordKey {
	return RecordKey{MatchID: r.MatchID, RequesterID: r.RequesterID}
}

// RecordKey is the AnalysisRecord primary key.
type RecordKey struct {
	MatchID     string
	RequesterID string
}

// Participant is one player within a match.
type Participant struct {
	ParticipantID       int    `json:"participant_id"`
	SummonerIdentifier  string `json:"summoner_identifier"`
	Champion            string `json:"champion"`
	Team                int    `json:"team"`
	DamageShare         float64 `json:"damage_share"`
	GoldEarned          int    `json:"gold_earned"`
	VisionScore         float64 `json:"vision_score"`
	ObjectiveParticipation float64 `json:"objective_participation"`
	KillParticipation   float64 `json:"kill_participation"`
	Win                 bool   `json:"win"`
}

// MatchDetail is the match summary half of a MatchBundle.
type MatchDetail struct {
	MatchID      string        `json:"match_id"`
	Region       string        `json:"region"`
	QueueID      int           `json:"queue_id"`
	DurationSecs int           `json:"duration_secs"`
	Participants []Participant `json:"participants"`
	Result       string        `json:"result"`
}

// TimelineFrame is one per-minute slice of participant state/events.
type TimelineFrame struct {
	Timestamp    time.Duration  `json:"timestamp"`
	Events       []string       `json:"events"`
	ParticipantHP map[int]int   `json:"participant_hp,omitempty"`
}

// MatchBundle is the Fetch stage's output: detail plus ordered timeline.
type MatchBundle struct {
	Detail   MatchDetail     `json:"detail"`
	Timeline []TimelineFrame `json:"timeline"`
}

// PlayerScore is one participant's dimensional score vector.
type PlayerScore struct {
	ParticipantID      int     `json:"participant_id"`
	SummonerIdentifier string  `json:"summoner_identifier"`
	Champion           string  `json:"champion"`
	Combat             float64 `json:"combat"`
	Economy            float64 `json:"economy"`
	Vision             float64 `json:"vision"`
	Objectives         float64 `json:"objectives"`
	Teamplay           float64 `json:"teamplay"`
	Overall            float64 `json:"overall"`
}

// DegradationFlags records why a report's fidelity was reduced.
type DegradationFlags struct {
	LLMTemplate     bool `json:"llm_template,omitempty"`
	ArenaCompliance bool `json:"arena_compliance,omitempty"`
	FallbackStrategy bool `json:"fallback_strategy,omitempty"`
}

// Any reports whether at least one degradation flag is set.
func (d DegradationFlags) Any() bool {
	return d.LLMTemplate || d.ArenaCompliance || d.FallbackStrategy
}

// ObservabilityMeta carries the per-request identifiers and durations that
// ride along with every AnalysisReport for later inspection.
type ObservabilityMeta struct {
	SessionID      string         `json:"session_id"`
	BranchID       string         `json:"branch_id"`
	StageDurations map[string]int64 `json:"stage_durations_ms,omitempty"`
}

// CorrelationID returns the stable "{session_id}:{branch_id}" identifier
// bound to every log line and external call made for this analysis.
func (o ObservabilityMeta) CorrelationID() string {
	return o.SessionID + ":" + o.BranchID
}

// LLMMetadata records the model id, token counts and latency for the
// Narrate stage's completion call.
type LLMMetadata struct {
	ModelID          string `json:"model_id"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	LatencyMS        int64  `json:"latency_ms"`
}

// AnalysisReport is produced by the Score+Narrate stages.
type AnalysisReport struct {
	MatchID           string            `json:"match_id"`
	Mode              string            `json:"mode"`
	AlgorithmVersion  string            `json:"algorithm_version"`
	PlayerScores      []PlayerScore     `json:"player_scores"`
	RequesterScore    PlayerScore       `json:"requester_score"`
	NarrativeText     string            `json:"narrative_text"`
	TTSSummary        string            `json:"tts_summary"`
	EmotionTag        EmotionTag        `json:"emotion_tag"`
	Highlights        []string          `json:"highlights"`
	Improvements      []string          `json:"improvements"`
	Observability     ObservabilityMeta `json:"observability"`
	Degradation       DegradationFlags  `json:"degradation_flags"`
}

// AnalysisRecord is the persisted row keyed on (match_id, requester_id).
type AnalysisRecord struct {
	MatchID          string          `json:"match_id"`
	RequesterID      string          `json:"requester_id"`
	Status           Status          `json:"status"`
	Mode             string          `json:"mode"`
	AlgorithmVersion string          `json:"algorithm_version"`
	ScoreData        json.RawMessage `json:"score_data"`
	NarrativeText    string          `json:"narrative_text"`
	TTSSummary       string          `json:"tts_summary"`
	EmotionTag       EmotionTag      `json:"emotion_tag"`
	LLMMetadata      json.RawMessage `json:"llm_metadata"`
	Degradation      json.RawMessage `json:"degradation_flags"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ScoreDataPayload is the JSON shape marshaled into AnalysisRecord.ScoreData.
type ScoreDataPayload struct {
	PlayerScores   []PlayerScore `json:"player_scores"`
	RequesterScore PlayerScore   `json:"requester_score"`
	Highlights     []string      `json:"highlights"`
	Improvements   []string      `json:"improvements"`
}

// TaskResult summarizes one AnalyzeMatch execution.
type TaskResult struct {
	Success         bool             `json:"success"`
	Stages          []string         `json:"stages"`
	StageDurations  map[string]int64 `json:"stage_durations_ms"`
	FailedStage     string           `json:"failed_stage,omitempty"`
	Degraded        bool             `json:"degraded"`
	Status          Status           `json:"status"`
}

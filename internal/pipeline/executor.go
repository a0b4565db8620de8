// Package pipeline implements the AnalyzeMatch task: the five-stage state
// machine described in spec.md §4.2 (Fetch → Score → Persist → Narrate →
// Deliver), its worker pool, and its orphan scanner, grounded on
// pkg/queue/worker.go's pollAndProcess/claimNextSession/runHeartbeat shape.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/matchmind/matchmind/internal/chatwebhook"
	"github.com/matchmind/matchmind/internal/config"
	"github.com/matchmind/matchmind/internal/core"
	"github.com/matchmind/matchmind/internal/gameapi"
	"github.com/matchmind/matchmind/internal/llm"
	"github.com/matchmind/matchmind/internal/observability"
	"github.com/matchmind/matchmind/internal/store"
	"github.com/matchmind/matchmind/internal/strategy"
)

// Executor runs a single AnalysisRequest through all five stages, mirroring
// pkg/queue/executor.go's Execute entry point.
type Executor struct {
	gameAPI     *gameapi.Client
	llmClient   *llm.Client
	chatClient  *chatwebhook.Client
	records     *store.RecordService
	factory     *strategy.Factory
	timeouts    config.StageTimeoutConfig
	retry       config.RetryConfig
	tokenTTL    time.Duration
	degradation config.DegradationConfig
	ops         *chatwebhook.Service
}

// Deps bundles Executor's collaborators.
type Deps struct {
	GameAPI     *gameapi.Client
	LLMClient   *llm.Client
	ChatClient  *chatwebhook.Client
	Records     *store.RecordService
	Factory     *strategy.Factory
	Timeouts    config.StageTimeoutConfig
	Retry       config.RetryConfig
	TokenTTL    time.Duration
	Degradation config.DegradationConfig
	Ops         *chatwebhook.Service
}

// NewExecutor constructs an Executor.
func NewExecutor(d Deps) *Executor {
	return &Executor{
		gameAPI:     d.GameAPI,
		llmClient:   d.LLMClient,
		chatClient:  d.ChatClient,
		records:     d.Records,
		factory:     d.Factory,
		timeouts:    d.Timeouts,
		retry:       d.Retry,
		tokenTTL:    d.TokenTTL,
		degradation: d.Degradation,
		ops:         d.Ops,
	}
}

// Execute runs the AnalyzeMatch state machine for req, returning a summary
// for worker bookkeeping. Once the analysis record exists it is left in a
// terminal status (completed | completed_no_delivery | failed); a Fetch or
// bundle-validation failure happens before the record is created, so no
// row is written for it.
func (e *Executor) Execute(ctx context.Context, req core.AnalysisRequest) core.TaskResult {
	key := req.Key()
	obs := core.ObservabilityMeta{SessionID: req.RequestID, BranchID: uuid.NewString()}
	cid := obs.CorrelationID()
	log := slog.With("request_id", req.RequestID, "match_id", req.MatchID, "correlation_id", cid)

	result := core.TaskResult{StageDurations: map[string]int64{}}
	e.ops.NotifyStart(ctx, req.MatchID, req.RequesterID)

	// Stage 1: Fetch
	bundle, err := e.runFetch(ctx, req, cid, &result)
	if err != nil {
		return e.fail(ctx, key, "fetch", err, &result)
	}
	bundleStrategy := e.factory.Resolve(bundle.Detail.QueueID)

	if err := core.ValidateBundle(bundle, string(bundleStrategy.Mode)); err != nil {
		return e.fail(ctx, key, "score", err, &result)
	}

	if err := e.records.UpsertRecord(ctx, key, string(bundleStrategy.Mode)); err != nil {
		return e.fail(ctx, key, "persist", err, &result)
	}

	// Stage 2: Score
	scores, requesterScore, err := e.runScore(ctx, bundle, bundleStrategy, req.RequesterID, &result)
	if err != nil {
		return e.fail(ctx, key, "score", err, &result)
	}

	// Stage 3: Persist (intermediate) is folded into the upsert above, which
	// created the record with status=processing; it moves to analyzing here,
	// before Narrate runs.
	if err := e.records.UpdateStatus(ctx, key, core.StatusAnalyzing, nil, ""); err != nil {
		return e.fail(ctx, key, "persist", err, &result)
	}

	// Stage 4: Narrate
	report, degraded, err := e.runNarrate(ctx, bundle, bundleStrategy, scores, requesterScore, obs, &result)
	if err != nil {
		return e.fail(ctx, key, "narrate", err, &result)
	}
	result.Degraded = degraded

	scoreData, _ := json.Marshal(core.ScoreDataPayload{
		PlayerScores: scores, RequesterScore: requesterScore,
		Highlights: report.Highlights, Improvements: report.Improvements,
	})
	llmMeta, _ := json.Marshal(report.Observability)
	degFlags, _ := json.Marshal(report.Degradation)

	rec := &core.AnalysisRecord{
		AlgorithmVersion: report.AlgorithmVersion,
		ScoreData:        scoreData,
		NarrativeText:    report.NarrativeText,
		TTSSummary:       report.TTSSummary,
		EmotionTag:       report.EmotionTag,
		LLMMetadata:      llmMeta,
		Degradation:      degFlags,
	}
	if err := e.records.UpdateStatus(ctx, key, core.StatusDelivering, rec, ""); err != nil {
		return e.fail(ctx, key, "persist", err, &result)
	}

	// Stage 5: Deliver
	status, delivered := e.runDeliver(ctx, req, rec, &result, log)
	_ = e.records.UpdateStatus(ctx, key, status, rec, "")
	e.ops.NotifyTerminal(ctx, req.MatchID, string(status), degraded)

	result.Success = true
	result.Status = status
	result.Stages = append(result.Stages, "fetch", "score", "persist", "narrate", "deliver")
	if !delivered {
		log.Warn("analysis completed without delivery")
	}
	return result
}

func (e *Executor) runFetch(ctx context.Context, req core.AnalysisRequest, cid string, result *core.TaskResult) (core.MatchBundle, error) {
	fctx, cancel := context.WithTimeout(ctx, e.timeouts.Fetch)
	defer cancel()

	start := time.Now()
	detail, err := observability.Wrap(fctx, "gameapi.get_match_detail", cid, func(ctx context.Context) (core.MatchDetail, error) {
		return e.gameAPI.GetMatchDetail(ctx, req.MatchID, req.Region)
	})
	if err != nil {
		return core.MatchBundle{}, core.NewPipelineError("fetch", core.KindTransientVendor, err)
	}

	timeline, err := observability.Wrap(fctx, "gameapi.get_match_timeline", cid, func(ctx context.Context) ([]core.TimelineFrame, error) {
		return e.gameAPI.GetMatchTimeline(ctx, req.MatchID, req.Region)
	})
	if err != nil {
		return core.MatchBundle{}, core.NewPipelineError("fetch", core.KindTransientVendor, err)
	}
	result.StageDurations["fetch"] = time.Since(start).Milliseconds()

	return core.MatchBundle{Detail: detail, Timeline: timeline}, nil
}

// runScore computes PlayerScore rows under the stage's configured deadline.
// Scorer.Score is synchronous, deterministic, in-memory math with no
// cancellation points, so the deadline is enforced by racing its completion
// against ctx.Done() on a worker goroutine rather than passing ctx through.
func (e *Executor) runScore(ctx context.Context, bundle core.MatchBundle, bdl strategy.Bundle, requesterID string, result *core.TaskResult) ([]core.PlayerScore, core.PlayerScore, error) {
	sctx, cancel := context.WithTimeout(ctx, e.timeouts.Score)
	defer cancel()

	start := time.Now()
	type scoreResult struct {
		scores []core.PlayerScore
	}
	done := make(chan scoreResult, 1)
	go func() {
		done <- scoreResult{scores: bdl.Scorer.Score(bundle)}
	}()

	var scores []core.PlayerScore
	select {
	case r := <-done:
		scores = r.scores
	case <-sctx.Done():
		return nil, core.PlayerScore{}, core.NewPipelineError("score", core.KindProgramming, sctx.Err())
	}
	result.StageDurations["score"] = time.Since(start).Milliseconds()

	var requesterScore core.PlayerScore
	for _, s := range scores {
		if s.SummonerIdentifier == requesterID {
			requesterScore = s
			break
		}
	}
	return scores, requesterScore, nil
}

func (e *Executor) runNarrate(ctx context.Context, bundle core.MatchBundle, bdl strategy.Bundle, scores []core.PlayerScore, requesterScore core.PlayerScore, obs core.ObservabilityMeta, result *core.TaskResult) (core.AnalysisReport, bool, error) {
	report := core.AnalysisReport{
		MatchID: bundle.Detail.MatchID, Mode: string(bdl.Mode), AlgorithmVersion: "v1",
		PlayerScores: scores, RequesterScore: requesterScore, Observability: obs,
	}

	if bdl.NoLLMCall {
		report.NarrativeText = strategy.FallbackNarrative
		report.TTSSummary = strategy.FallbackTTSSummary
		report.EmotionTag = strategy.ExtractEmotion(report.NarrativeText)
		report.Degradation.FallbackStrategy = true
		return report, true, nil
	}

	nctx, cancel := context.WithTimeout(ctx, e.timeouts.Narrate)
	defer cancel()

	start := time.Now()
	system, user := bdl.PromptBuilder(bundle, scores, requesterScore)
	payload, meta, err := e.generateValidated(nctx, llm.GenerateInput{System: system, User: user, SchemaName: bdl.SchemaName}, bdl)
	degraded := false
	if err != nil {
		if !e.degradation.TemplateEnabled {
			return core.AnalysisReport{}, false, core.NewPipelineError("narrate", core.KindDegradableLLM, err)
		}

		if errors.Is(err, core.ErrComplianceRejected) {
			// The Arena compliance rule is mandatory: a rejected narrative is
			// never replaced by the mode template (it's derived from the same
			// numerics the filter just rejected), only by the Fallback
			// strategy's generic text, per spec.md §4.3/§8 scenario 2.
			payload = llm.NarrativePayload{
				NarrativeText: strategy.FallbackNarrative,
				TTSSummary:    strategy.FallbackTTSSummary,
			}
			report.Degradation.ArenaCompliance = true
		} else {
			payload = llm.NarrativePayload{
				NarrativeText: strategy.TemplateNarrative(bdl.Mode, requesterScore),
				TTSSummary:    strategy.TemplateTTSSummary(requesterScore),
			}
			report.Degradation.LLMTemplate = true
		}
		degraded = true
	} else {
		report.Observability.StageDurations = map[string]int64{"narrate_llm_ms": meta.Latency.Milliseconds()}
	}
	result.StageDurations["narrate"] = time.Since(start).Milliseconds()

	report.NarrativeText = payload.NarrativeText
	report.TTSSummary = payload.TTSSummary
	report.Highlights = payload.Highlights
	report.Improvements = payload.Improvements
	report.EmotionTag = strategy.ExtractEmotion(report.NarrativeText)

	return report, degraded, nil
}

// generateValidated performs the LLM call, validates the JSON schema and
// (for Arena) the compliance filter, retrying once with a strict-JSON
// directive on failure, per spec.md §4.2's single schema-validation retry.
func (e *Executor) generateValidated(ctx context.Context, in llm.GenerateInput, bdl strategy.Bundle) (llm.NarrativePayload, llm.Metadata, error) {
	raw, meta, err := e.llmClient.Generate(ctx, in)
	if err == nil {
		if p, verr := e.validateAndCheck(raw, bdl); verr == nil {
			return p, meta, nil
		}
	}

	raw, meta, err = e.llmClient.GenerateStrict(ctx, in)
	if err != nil {
		return llm.NarrativePayload{}, llm.Metadata{}, err
	}
	p, verr := e.validateAndCheck(raw, bdl)
	if verr != nil {
		return llm.NarrativePayload{}, llm.Metadata{}, verr
	}
	return p, meta, nil
}

func (e *Executor) validateAndCheck(raw json.RawMessage, bdl strategy.Bundle) (llm.NarrativePayload, error) {
	p, err := llm.ValidateSchema(raw)
	if err != nil {
		return llm.NarrativePayload{}, err
	}
	if bdl.ComplianceFilter != nil {
		if err := bdl.ComplianceFilter.Check(p.NarrativeText); err != nil {
			return llm.NarrativePayload{}, err
		}
	}
	return p, nil
}

func (e *Executor) runDeliver(ctx context.Context, req core.AnalysisRequest, rec *core.AnalysisRecord, result *core.TaskResult, log *slog.Logger) (core.Status, bool) {
	if time.Since(req.RequestedAt) > e.tokenTTL {
		return core.StatusCompletedNoDeliver, false
	}

	dctx, cancel := context.WithTimeout(ctx, e.timeouts.Deliver)
	defer cancel()

	start := time.Now()
	payload, _ := json.Marshal(chatwebhook.Payload{
		Title:       fmt.Sprintf("Match Analysis — %s", rec.EmotionTag),
		Description: rec.NarrativeText,
		Footer:      rec.TTSSummary,
	})
	outcome, err := e.chatClient.Deliver(dctx, req.InteractionToken, payload)
	result.StageDurations["deliver"] = time.Since(start).Milliseconds()

	if err != nil {
		log.Warn("delivery failed", "error", err)
	}
	switch outcome {
	case chatwebhook.OutcomeOK:
		return core.StatusCompleted, true
	case chatwebhook.OutcomeTokenExpired:
		return core.StatusCompletedNoDeliver, false
	default:
		return core.StatusCompletedNoDeliver, false
	}
}

// fail marks a stage 1-4 failure terminal: status=failed (or
// completed_no_delivery when err is a PipelineError of a non-fatal kind),
// error_message written, and the terminal status posted to the ops channel
// via ops.NotifyTerminal (fail-open). No error reply is sent to the
// requester's interaction token.
func (e *Executor) fail(ctx context.Context, key core.RecordKey, stage string, err error, result *core.TaskResult) core.TaskResult {
	result.Success = false
	result.FailedStage = stage
	result.Status = core.StatusFailed

	var pe *core.PipelineError
	msg := err.Error()
	if errors.As(err, &pe) && !pe.Kind.IsFatal() {
		result.Status = core.StatusCompletedNoDeliver
	}

	_ = e.records.UpdateStatus(context.Background(), key, result.Status, nil, msg)
	e.ops.NotifyTerminal(context.Background(), key.MatchID, string(result.Status), false)
	slog.Error("analysis stage failed", "stage", stage, "error", err)
	return *result
}

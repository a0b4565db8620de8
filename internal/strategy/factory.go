package strategy

import (
	"fmt"
	"strings"

	"github.com/matchmind/matchmind/internal/config"
	"github.com/matchmind/matchmind/internal/core"
)

// PromptBuilder renders the system+user messages sent to the LLM client for
// the Narrate stage. Per spec.md §6, inputs are PlayerScore numerics and a
// compact MatchBundle summary — NO raw timeline frames.
type PromptBuilder func(bundle core.MatchBundle, scores []core.PlayerScore, requester core.PlayerScore) (system, user string)

// Bundle is the (scorer, narrator-prompt, validation-schema,
// compliance-filter) quadruple spec.md §4.3 describes. ComplianceFilter is
// nil for every mode except Arena.
type Bundle struct {
	Mode             Mode
	Scorer           Scorer
	PromptBuilder    PromptBuilder
	SchemaName       string
	ComplianceFilter *ComplianceFilter
	NoLLMCall        bool
}

// Factory resolves a match's queue id to a strategy Bundle.
type Factory struct {
	arenaFilter *ComplianceFilter
	features    config.FeatureFlags
}

// NewFactory constructs a Factory, loading the Arena compliance panel and
// recording which optional strategies are enabled per spec.md §6's
// feature.arena_enabled/feature.blind_mode_enabled gates.
func NewFactory(features config.FeatureFlags) (*Factory, error) {
	f, err := NewComplianceFilter()
	if err != nil {
		return nil, fmt.Errorf("loading arena compliance filter: %w", err)
	}
	return &Factory{arenaFilter: f, features: features}, nil
}

// Resolve selects a Bundle from a match's vendor queue_id, per spec.md §4.3.
// A mode whose feature flag is disabled resolves to ModeFallback instead,
// per spec.md §6.
func (f *Factory) Resolve(queueID int) Bundle {
	mode := ResolveMode(queueID)
	switch mode {
	case ModeClassic:
		return Bundle{Mode: mode, Scorer: ClassicScorer{}, PromptBuilder: buildClassicPrompt, SchemaName: ClassicSchemaName}
	case ModeBlindMode:
		if !f.features.BlindModeEnabled {
			return f.fallback()
		}
		return Bundle{Mode: mode, Scorer: BlindModeScorer{}, PromptBuilder: buildBlindModePrompt, SchemaName: BlindModeSchemaName}
	case ModeArena:
		if !f.features.ArenaEnabled {
			return f.fallback()
		}
		return Bundle{Mode: mode, Scorer: ArenaScorer{}, PromptBuilder: buildArenaPrompt, SchemaName: ArenaSchemaName, ComplianceFilter: f.arenaFilter}
	default:
		return f.fallback()
	}
}

func (f *Factory) fallback() Bundle {
	return Bundle{Mode: ModeFallback, Scorer: FallbackScorer{}, NoLLMCall: true}
}

func summarizeBundle(bundle core.MatchBundle) string {
	return fmt.Sprintf("queue_id=%d duration_secs=%d result=%s participants=%d",
		bundle.Detail.QueueID, bundle.Detail.DurationSecs, bundle.Detail.Result, len(bundle.Detail.Participants))
}

func summarizeScores(scores []core.PlayerScore) string {
	var sb strings.Builder
	for _, s := range scores {
		fmt.Fprintf(&sb, "- participant %d (%s, %s): combat=%.1f economy=%.1f vision=%.1f objectives=%.1f teamplay=%.1f overall=%.1f\n",
			s.ParticipantID, s.SummonerIdentifier, s.Champion, s.Combat, s.Economy, s.Vision, s.Objectives, s.Teamplay, s.Overall)
	}
	return sb.String()
}

func buildClassicPrompt(bundle core.MatchBundle, scores []core.PlayerScore, requester core.PlayerScore) (string, string) {
	system := "You are a League-of-Legends-style coaching assistant. Respond with a single JSON object " +
		"matching the classic_narrative_v1 schema: narrative_text, tts_summary, highlights (array), improvements (array). " +
		"No prose outside the JSON object."
	user := fmt.Sprintf("Match summary: %s\nRequester: participant %d (%s).\nAll scores:\n%s",
		summarizeBundle(bundle), requester.ParticipantID, requester.SummonerIdentifier, summarizeScores(scores))
	return system, user
}

func buildBlindModePrompt(bundle core.MatchBundle, scores []core.PlayerScore, requester core.PlayerScore) (string, string) {
	system := "You are a League-of-Legends-style coaching assistant for no-lane modes (ARAM/Clash). Respond with a " +
		"single JSON object matching the blindmode_narrative_v1 schema: narrative_text, tts_summary, highlights, " +
		"improvements. Do not mention vision score or objective control; those dimensions are not tracked in this mode."
	var sb strings.Builder
	for _, s := range scores {
		fmt.Fprintf(&sb, "- participant %d (%s, %s): combat=%.1f economy=%.1f teamplay=%.1f overall=%.1f\n",
			s.ParticipantID, s.SummonerIdentifier, s.Champion, s.Combat, s.Economy, s.Teamplay, s.Overall)
	}
	user := fmt.Sprintf("Match summary: %s\nRequester: participant %d (%s).\nAll scores:\n%s",
		summarizeBundle(bundle), requester.ParticipantID, requester.SummonerIdentifier, sb.String())
	return system, user
}

func buildArenaPrompt(bundle core.MatchBundle, scores []core.PlayerScore, requester core.PlayerScore) (string, string) {
	system := "You are a coaching assistant for Arena (round-based duos). Respond with a single JSON object matching " +
		"the arena_narrative_v1 schema: narrative_text, tts_summary, highlights, improvements. You MUST NOT mention " +
		"win rates, tier rankings, or give predictive advice about future rounds. Discuss only what already happened " +
		"in this match."
	user := fmt.Sprintf("Match summary: %s\nRequester: participant %d (%s).\nAll scores:\n%s",
		summarizeBundle(bundle), requester.ParticipantID, requester.SummonerIdentifier, summarizeScores(scores))
	return system, user
}

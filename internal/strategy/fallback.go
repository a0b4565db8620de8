package strategy

import "github.com/matchmind/matchmind/internal/core"

// FallbackScorer produces the minimal deterministic scoring for unknown
// modes: only the combat dimension is populated, per spec.md §4.3's
// "Fallback — unknown mode; emits a generic template. No LLM call."
type FallbackScorer struct{}

func (FallbackScorer) Score(bundle core.MatchBundle) []core.PlayerScore {
	scores := make([]core.PlayerScore, 0, len(bundle.Detail.Participants))
	for _, p := range bundle.Detail.Participants {
		combat, _, _, _, _ := scoreDimensions(p, bundle.Detail)
		scores = append(scores, core.PlayerScore{
			ParticipantID:      p.ParticipantID,
			SummonerIdentifier: p.SummonerIdentifier,
			Champion:           p.Champion,
			Combat:             combat,
			Overall:            combat,
		})
	}
	return rankAndAssign(scores)
}

// FallbackNarrative is the generic template emitted when no LLM call is
// made, per spec.md §4.3/§8 scenario 6. It also substitutes for an Arena
// narrative rejected by the compliance filter, per spec.md §4.3's mandatory
// compliance rule and §8 scenario 2: the mode-specific template is never an
// acceptable substitute for a rejected narrative, since it's generated from
// the same banned-content-adjacent numerics.
const FallbackNarrative = "Analysis unavailable for this mode. Your combat performance was recorded, but a detailed coaching narrative is not supported for this queue yet."

// FallbackTTSSummary is FallbackNarrative's speech-friendly counterpart.
const FallbackTTSSummary = "Analysis unavailable for this queue."

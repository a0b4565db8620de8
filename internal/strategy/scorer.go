package strategy

import (
	"sort"

	"github.com/matchmind/matchmind/internal/core"
)

// Scorer computes a PlayerScore vector for every participant in a
// MatchBundle. Implementations MUST be deterministic: two calls with an
// identical bundle produce bitwise-equal results (spec.md §8).
type Scorer interface {
	Score(bundle core.MatchBundle) []core.PlayerScore
}

// weights is a dimension weight table; omitted dimensions are implicitly 0
// and excluded from the weighted sum, per spec.md §4.3.
type weights struct {
	combat, economy, vision, objectives, teamplay float64
}

// scoreDimensions computes the five raw [0,100] dimensions for a single
// participant from MatchBundle evidence. Every formula is monotone in its
// principal input and clamped to [0, 100], per spec.md §4.3's invariant.
func scoreDimensions(p core.Participant, detail core.MatchDetail) (combat, economy, vision, objectives, teamplay float64) {
	combat = clamp(p.DamageShare*140 + p.KillParticipation*20)
	economy = clamp(float64(p.GoldEarned) / float64(maxInt(1, detail.DurationSecs)) * 100)
	vision = clamp(p.VisionScore * 4)
	objectives = clamp(p.ObjectiveParticipation * 100)
	teamplay = clamp(p.KillParticipation*60 + p.ObjectiveParticipation*40)
	return
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return round1(v)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// weighted applies a weight table to a dimension vector, producing the
// rounded overall score per spec.md §4.3: "overall = Σ wᵢ·dᵢ rounded to one
// decimal".
func weighted(w weights, combat, economy, vision, objectives, teamplay float64) float64 {
	return round1(w.combat*combat + w.economy*economy + w.vision*vision + w.objectives*objectives + w.teamplay*teamplay)
}

// rankAndAssign sorts scores by Overall descending, breaking ties by
// participant index (ascending), per spec.md §4.3.
func rankAndAssign(scores []core.PlayerScore) []core.PlayerScore {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Overall != scores[j].Overall {
			return scores[i].Overall > scores[j].Overall
		}
		return scores[i].ParticipantID < scores[j].ParticipantID
	})
	return scores
}

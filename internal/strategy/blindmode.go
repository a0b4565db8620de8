package strategy

import "github.com/matchmind/matchmind/internal/core"

// blindModeWeights implements spec.md §4.3's BlindMode (no-lane) weight
// table: combat 0.50, economy 0.30, teamplay 0.20. Vision/objectives are
// forced to 0 and omitted from the prompt.
var blindModeWeights = weights{combat: 0.50, economy: 0.30, teamplay: 0.20}

// BlindModeScorer scores no-lane modes (ARAM, clash) where vision and
// objective control are not meaningful signals.
type BlindModeScorer struct{}

func (BlindModeScorer) Score(bundle core.MatchBundle) []core.PlayerScore {
	scores := make([]core.PlayerScore, 0, len(bundle.Detail.Participants))
	for _, p := range bundle.Detail.Participants {
		combat, economy, _, _, teamplay := scoreDimensions(p, bundle.Detail)
		scores = append(scores, core.PlayerScore{
			ParticipantID:      p.ParticipantID,
			SummonerIdentifier: p.SummonerIdentifier,
			Champion:           p.Champion,
			Combat:             combat,
			Economy:            economy,
			Vision:             0,
			Objectives:         0,
			Teamplay:           teamplay,
			Overall:            weighted(blindModeWeights, combat, economy, 0, 0, teamplay),
		})
	}
	return rankAndAssign(scores)
}

// BlindModeSchemaName is the narrator's JSON schema identifier for this mode.
const BlindModeSchemaName = "blindmode_narrative_v1"

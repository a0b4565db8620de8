package strategy

import "github.com/matchmind/matchmind/internal/core"

// classicWeights implements spec.md §4.3's Classic weight table:
// combat 0.30, economy 0.25, objectives 0.20, vision 0.15, teamplay 0.10.
var classicWeights = weights{combat: 0.30, economy: 0.25, objectives: 0.20, vision: 0.15, teamplay: 0.10}

// ClassicScorer scores the five-dimension, full-lane game modes (ranked,
// normal draft/blind, flex).
type ClassicScorer struct{}

func (ClassicScorer) Score(bundle core.MatchBundle) []core.PlayerScore {
	scores := make([]core.PlayerScore, 0, len(bundle.Detail.Participants))
	for _, p := range bundle.Detail.Participants {
		combat, economy, vision, objectives, teamplay := scoreDimensions(p, bundle.Detail)
		scores = append(scores, core.PlayerScore{
			ParticipantID:      p.ParticipantID,
			SummonerIdentifier: p.SummonerIdentifier,
			Champion:           p.Champion,
			Combat:             combat,
			Economy:            economy,
			Vision:             vision,
			Objectives:         objectives,
			Teamplay:           teamplay,
			Overall:            weighted(classicWeights, combat, economy, vision, objectives, teamplay),
		})
	}
	return rankAndAssign(scores)
}

// ClassicSchemaName is the narrator's JSON schema identifier for this mode.
const ClassicSchemaName = "classic_narrative_v1"

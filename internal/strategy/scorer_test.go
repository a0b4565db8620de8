package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchmind/matchmind/internal/core"
)

func sampleDetail(n int) core.MatchDetail {
	participants := make([]core.Participant, 0, n)
	for i := 0; i < n; i++ {
		participants = append(participants, core.Participant{
			ParticipantID:          i,
			SummonerIdentifier:     "player",
			Champion:               "champ",
			Team:                   i % 2,
			DamageShare:            0.1 * float64(i+1),
			GoldEarned:             1000 * (i + 1),
			VisionScore:            float64(i + 1),
			ObjectiveParticipation: 0.05 * float64(i+1),
			KillParticipation:      0.1 * float64(i+1),
			Win:                    i%2 == 0,
		})
	}
	return core.MatchDetail{MatchID: "m1", Region: "na1", QueueID: 420, DurationSecs: 1800, Participants: participants}
}

func TestClassicScorerIsDeterministic(t *testing.T) {
	bundle := core.MatchBundle{Detail: sampleDetail(10)}
	s := ClassicScorer{}

	first := s.Score(bundle)
	second := s.Score(bundle)

	require.Len(t, first, 10)
	assert.Equal(t, first, second, "scoring the same bundle twice must be bitwise equal")
}

func TestClassicScorerRanksByOverallDescending(t *testing.T) {
	bundle := core.MatchBundle{Detail: sampleDetail(10)}
	scores := ClassicScorer{}.Score(bundle)

	for i := 1; i < len(scores); i++ {
		assert.GreaterOrEqual(t, scores[i-1].Overall, scores[i].Overall)
	}
}

func TestClassicScorerDimensionsAreClamped(t *testing.T) {
	detail := sampleDetail(1)
	detail.Participants[0].DamageShare = 5.0
	detail.Participants[0].KillParticipation = 5.0
	detail.Participants[0].VisionScore = 100
	detail.Participants[0].ObjectiveParticipation = 5.0

	scores := ClassicScorer{}.Score(core.MatchBundle{Detail: detail})
	require.Len(t, scores, 1)

	assert.LessOrEqual(t, scores[0].Combat, 100.0)
	assert.LessOrEqual(t, scores[0].Vision, 100.0)
	assert.LessOrEqual(t, scores[0].Objectives, 100.0)
	assert.LessOrEqual(t, scores[0].Teamplay, 100.0)
	assert.LessOrEqual(t, scores[0].Overall, 100.0)
}

func TestBlindModeScorerZeroesVisionAndObjectives(t *testing.T) {
	bundle := core.MatchBundle{Detail: sampleDetail(5)}
	scores := BlindModeScorer{}.Score(bundle)

	require.Len(t, scores, 5)
	for _, s := range scores {
		assert.Zero(t, s.Vision)
		assert.Zero(t, s.Objectives)
	}
}

func TestArenaScorerOnlyUsesCombatAndTeamplay(t *testing.T) {
	bundle := core.MatchBundle{Detail: sampleDetail(2)}
	scores := ArenaScorer{}.Score(bundle)

	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.Zero(t, s.Economy)
		assert.Zero(t, s.Vision)
		assert.Zero(t, s.Objectives)
	}
}

func TestFallbackScorerOnlyPopulatesCombat(t *testing.T) {
	bundle := core.MatchBundle{Detail: sampleDetail(3)}
	scores := FallbackScorer{}.Score(bundle)

	require.Len(t, scores, 3)
	for _, s := range scores {
		assert.Equal(t, s.Combat, s.Overall)
		assert.Zero(t, s.Economy)
		assert.Zero(t, s.Vision)
	}
}

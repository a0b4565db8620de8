package strategy

import (
	"strings"

	"github.com/matchmind/matchmind/internal/core"
)

// emotionKeywords maps narrative keywords to an EmotionTag, checked in
// declaration order (first match wins). This implements the Open Question
// in spec.md §9/§4.5: emotion_tag is derived by deterministic keyword
// mapping over the generated narrative, not a second LLM call, so the
// choice is reproducible and pinnable by table tests, per SPEC_FULL.md §4.3.
var emotionKeywords = []struct {
	tag      core.EmotionTag
	keywords []string
}{
	{core.EmotionExcited, []string{"incredible", "dominant", "outstanding", "phenomenal", "flawless"}},
	{core.EmotionCritical, []string{"struggled", "fell short", "underperform", "costly mistake", "repeatedly died"}},
	{core.EmotionSympathetic, []string{"tough loss", "unlucky", "despite the loss", "close game"}},
	{core.EmotionEncouraging, []string{"solid", "good progress", "room to grow", "keep building", "improving"}},
}

// ExtractEmotion derives an EmotionTag from narrative text by deterministic
// keyword mapping, falling back to EmotionNeutral when nothing matches.
func ExtractEmotion(narrative string) core.EmotionTag {
	lower := strings.ToLower(narrative)
	for _, e := range emotionKeywords {
		for _, kw := range e.keywords {
			if strings.Contains(lower, kw) {
				return e.tag
			}
		}
	}
	return core.EmotionNeutral
}

package strategy

import (
	"fmt"
	"strings"

	"github.com/matchmind/matchmind/internal/core"
)

// TemplateNarrative builds a deterministic, mode-specific narrative from
// PlayerScore numerics alone, for the stage-4 degradation path (spec.md
// §4.2: "substitutes a deterministic, mode-specific template... NOT fatal").
func TemplateNarrative(mode Mode, requester core.PlayerScore) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your %s performance: overall score %.1f/100.", string(mode), requester.Overall)
	if requester.Combat > 0 {
		fmt.Fprintf(&sb, " Combat %.1f,", requester.Combat)
	}
	if requester.Economy > 0 {
		fmt.Fprintf(&sb, " economy %.1f,", requester.Economy)
	}
	if requester.Vision > 0 {
		fmt.Fprintf(&sb, " vision %.1f,", requester.Vision)
	}
	if requester.Objectives > 0 {
		fmt.Fprintf(&sb, " objectives %.1f,", requester.Objectives)
	}
	if requester.Teamplay > 0 {
		fmt.Fprintf(&sb, " teamplay %.1f,", requester.Teamplay)
	}
	text := strings.TrimSuffix(sb.String(), ",")
	return text
}

// TemplateTTSSummary produces the short speech-friendly variant of the
// template narrative.
func TemplateTTSSummary(requester core.PlayerScore) string {
	return fmt.Sprintf("Overall score %.0f out of 100.", requester.Overall)
}

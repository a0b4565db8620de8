// Package strategy implements the StrategyFactory and the mode-specific
// scoring/narration strategies: Classic, BlindMode, Arena and Fallback.
package strategy

// Mode is the closed enumeration of supported match modes, replacing the
// ad-hoc string-queue-id dispatch the distilled spec describes (see
// SPEC_FULL.md §4.3) with a total, switch-exhaustive type.
type Mode string

const (
	ModeClassic   Mode = "classic"
	ModeBlindMode Mode = "blindmode"
	ModeArena     Mode = "arena"
	ModeFallback  Mode = "fallback"
)

// queueModes maps vendor queue ids to modes. Unknown ids resolve to
// ModeFallback, keeping the enumeration total per spec.md §4.3/§8
// ("Unknown queue_id → Fallback strategy selected").
var queueModes = map[int]Mode{
	420:  ModeClassic, // ranked solo/duo
	400:  ModeClassic, // normal draft
	430:  ModeClassic, // normal blind
	440:  ModeClassic, // ranked flex
	450:  ModeBlindMode, // ARAM
	700:  ModeBlindMode, // clash (treated as no-lane for scoring purposes)
	1700: ModeArena,
	1710: ModeArena,
}

// ResolveMode maps a vendor queue id to a Mode, defaulting to ModeFallback.
func ResolveMode(queueID int) Mode {
	if m, ok := queueModes[queueID]; ok {
		return m
	}
	return ModeFallback
}

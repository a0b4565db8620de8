package core

import "fmt"

// expectedParticipants maps a mode name to the participant count a valid
// MatchBundle for that mode must carry.
var expectedParticipants = map[string]int{
	"classic":   10,
	"blindmode": 5,
	"arena":     2,
}

// ValidateBundle checks the Fetch→Score boundary invariant: a MatchBundle's
// participant count must match the mode's expected size, and timeline frames
// must be monotonically non-decreasing in time. A violation is a
// Programming error — a contract break between Fetch and Score, never a
// vendor data problem.
func ValidateBundle(b MatchBundle, mode string) error {
	if want, ok := expectedParticipants[mode]; ok {
		if got := len(b.Detail.Participants); got != want {
			return NewPipelineError("score", KindProgramming,
				fmt.Errorf("mode %s expects %d participants, got %d", mode, want, got))
		}
	}
	for i := 1; i < len(b.Timeline); i++ {
		if b.Timeline[i].Timestamp < b.Timeline[i-1].Timestamp {
			return NewPipelineError("score", KindProgramming,
				fmt.Errorf("timeline frame %d out of order", i))
		}
	}
	return nil
}

package strategy

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matchmind/matchmind/internal/core"
)

// arenaWeights implements spec.md §4.3's Arena weight table: combat 0.60,
// duo_synergy 0.40 (mapped onto the Teamplay field).
var arenaWeights = weights{combat: 0.60, teamplay: 0.40}

// ArenaScorer scores the two-dimension round-based duos mode.
type ArenaScorer struct{}

func (ArenaScorer) Score(bundle core.MatchBundle) []core.PlayerScore {
	scores := make([]core.PlayerScore, 0, len(bundle.Detail.Participants))
	for _, p := range bundle.Detail.Participants {
		combat, _, _, _, teamplay := scoreDimensions(p, bundle.Detail)
		scores = append(scores, core.PlayerScore{
			ParticipantID:      p.ParticipantID,
			SummonerIdentifier: p.SummonerIdentifier,
			Champion:           p.Champion,
			Combat:             combat,
			Teamplay:           teamplay,
			Overall:            weighted(arenaWeights, combat, 0, 0, 0, teamplay),
		})
	}
	return rankAndAssign(scores)
}

// ArenaSchemaName is the narrator's JSON schema identifier for this mode.
const ArenaSchemaName = "arena_narrative_v1"

//go:embed arena_compliance.yaml
var arenaComplianceFS embed.FS

// complianceRules is the loaded, compiled banned-phrase panel.
type complianceRules struct {
	BannedPhrases []string `yaml:"banned_phrases"`
	BannedPatterns []string `yaml:"banned_patterns"`
}

// ComplianceFilter rejects narratives referencing win rates, tier rankings,
// or predictive advice about future rounds — the mandatory Arena compliance
// rule in spec.md §4.3. The banned-phrase set is a data file
// (arena_compliance.yaml), not inferred prose, resolving Open Question #1
// from spec.md §9 explicitly.
type ComplianceFilter struct {
	literal  []string
	patterns []*regexp.Regexp
}

// NewComplianceFilter loads the embedded arena_compliance.yaml panel.
func NewComplianceFilter() (*ComplianceFilter, error) {
	raw, err := arenaComplianceFS.ReadFile("arena_compliance.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading arena_compliance.yaml: %w", err)
	}
	var rules complianceRules
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parsing arena_compliance.yaml: %w", err)
	}
	f := &ComplianceFilter{}
	for _, p := range rules.BannedPhrases {
		f.literal = append(f.literal, strings.ToLower(p))
	}
	for _, p := range rules.BannedPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling banned pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Check scans text for banned content, returning core.ErrComplianceRejected
// if any literal phrase or regex pattern matches. The whole text is scanned
// at once: literal phrases are matched case-insensitively, and regex
// patterns are matched as written against the original text.
func (f *ComplianceFilter) Check(text string) error {
	lower := strings.ToLower(text)
	for _, phrase := range f.literal {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("%w: banned phrase %q", core.ErrComplianceRejected, phrase)
		}
	}
	for _, re := range f.patterns {
		if re.MatchString(text) {
			return fmt.Errorf("%w: banned pattern %q", core.ErrComplianceRejected, re.String())
		}
	}
	return nil
}

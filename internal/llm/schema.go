package llm

import (
	"encoding/json"
	"fmt"

	"github.com/matchmind/matchmind/internal/core"
)

// NarrativePayload is the JSON shape every mode schema requires from the
// LLM's completion, per spec.md §4.5/§6 ("Output: JSON matching one of the
// mode schemas").
type NarrativePayload struct {
	NarrativeText string   `json:"narrative_text"`
	TTSSummary    string   `json:"tts_summary"`
	Highlights    []string `json:"highlights"`
	Improvements  []string `json:"improvements"`
}

// ValidateSchema decodes raw against NarrativePayload's required shape,
// returning core.ErrSchemaInvalid on a missing/empty narrative_text or
// malformed JSON.
func ValidateSchema(raw json.RawMessage) (NarrativePayload, error) {
	var p NarrativePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return NarrativePayload{}, fmt.Errorf("%w: %v", core.ErrSchemaInvalid, err)
	}
	if p.NarrativeText == "" {
		return NarrativePayload{}, fmt.Errorf("%w: narrative_text is required", core.ErrSchemaInvalid)
	}
	return p, nil
}

package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchmind/matchmind/internal/core"
)

func TestValidateSchemaAcceptsAWellFormedPayload(t *testing.T) {
	raw := []byte(`{"narrative_text":"Great game.","tts_summary":"Great game.","highlights":["clutch"],"improvements":["ward more"]}`)

	p, err := ValidateSchema(raw)
	require.NoError(t, err)
	assert.Equal(t, "Great game.", p.NarrativeText)
	assert.Equal(t, []string{"clutch"}, p.Highlights)
	assert.Equal(t, []string{"ward more"}, p.Improvements)
}

func TestValidateSchemaRejectsMalformedJSON(t *testing.T) {
	_, err := ValidateSchema([]byte(`{not json`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchemaInvalid))
}

func TestValidateSchemaRejectsEmptyNarrativeText(t *testing.T) {
	_, err := ValidateSchema([]byte(`{"narrative_text":""}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchemaInvalid))
}

func TestValidateSchemaRejectsMissingNarrativeTextField(t *testing.T) {
	_, err := ValidateSchema([]byte(`{"tts_summary":"ok"}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrSchemaInvalid))
}

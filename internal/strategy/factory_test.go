package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchmind/matchmind/internal/config"
)

func TestFactoryResolveSelectsExpectedBundles(t *testing.T) {
	f, err := NewFactory(config.FeatureFlags{ArenaEnabled: true, BlindModeEnabled: true})
	require.NoError(t, err)

	tests := []struct {
		name             string
		queueID          int
		wantMode         Mode
		wantNoLLMCall    bool
		wantComplianceOn bool
	}{
		{"classic", 420, ModeClassic, false, false},
		{"blind mode", 450, ModeBlindMode, false, false},
		{"arena", 1700, ModeArena, false, true},
		{"unknown falls back with no llm call", 31337, ModeFallback, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle := f.Resolve(tt.queueID)
			assert.Equal(t, tt.wantMode, bundle.Mode)
			assert.Equal(t, tt.wantNoLLMCall, bundle.NoLLMCall)
			assert.Equal(t, tt.wantComplianceOn, bundle.ComplianceFilter != nil)
			if !tt.wantNoLLMCall {
				assert.NotNil(t, bundle.Scorer)
				assert.NotNil(t, bundle.PromptBuilder)
				assert.NotEmpty(t, bundle.SchemaName)
			}
		})
	}
}

func TestFactoryResolveFallsBackWhenFeatureDisabled(t *testing.T) {
	f, err := NewFactory(config.FeatureFlags{ArenaEnabled: false, BlindModeEnabled: false})
	require.NoError(t, err)

	arena := f.Resolve(1700)
	assert.Equal(t, ModeFallback, arena.Mode)
	assert.True(t, arena.NoLLMCall)

	blindMode := f.Resolve(450)
	assert.Equal(t, ModeFallback, blindMode.Mode)
	assert.True(t, blindMode.NoLLMCall)
}

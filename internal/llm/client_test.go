package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}

func TestDefaultConfig_CoversAllTiers(t *testing.T) {
	cfg := DefaultConfig()
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		assert.NotEmpty(t, cfg.GetModel(tier), "tier %s", tier)
	}
}

func TestGetModel_FallbackChain(t *testing.T) {
	cfg := &Config{Models: map[ModelTier]string{TierLite: "lite-model"}}
	assert.Equal(t, "lite-model", cfg.GetModel(TierAdvanced))

	cfg = &Config{Models: map[ModelTier]string{TierStandard: "standard-model"}}
	assert.Equal(t, "standard-model", cfg.GetModel(TierAdvanced))

	empty := &Config{Models: map[ModelTier]string{}}
	assert.Empty(t, empty.GetModel(TierStandard))
}

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mode string

const (
	modeLegacy  mode = "legacy"
	modeFlatten mode = "flatten"
)

func newModeNormalizer() *Normalizer[mode] {
	return NewNormalizer(map[string]mode{
		"legacy":  modeLegacy,
		"Flatten": modeFlatten,
	}, modeLegacy)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newModeNormalizer()

	tests := []struct {
		input    string
		expected mode
	}{
		{"legacy", modeLegacy},
		{"  FLATTEN ", modeFlatten},
		{"flatten", modeFlatten},
		{"unknown", modeLegacy},
		{"", modeLegacy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, n.Normalize(tt.input), "input %q", tt.input)
	}
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := newModeNormalizer()

	got, err := n.NormalizeWithError("Flatten")
	require.NoError(t, err)
	assert.Equal(t, modeFlatten, got)

	got, err = n.NormalizeWithError("")
	require.NoError(t, err)
	assert.Equal(t, modeLegacy, got)

	_, err = n.NormalizeWithError("resolve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[flatten legacy]")
}

func TestNormalizer_ValidKeysIsACopy(t *testing.T) {
	n := newModeNormalizer()
	keys := n.ValidKeys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"flatten", "legacy"}, n.ValidKeys())
}

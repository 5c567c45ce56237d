package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHigherIsBetter(t *testing.T) {
	out := Normalize(map[string]float64{
		"Alpha": 80,
		"Beta":  40,
	}, false)

	require.Len(t, out, 2)
	assert.Equal(t, 100.0, out["Alpha"], "top performer scores exactly 100")
	assert.Equal(t, 50.0, out["Beta"])
}

func TestNormalizeLowerIsBetter(t *testing.T) {
	out := Normalize(map[string]float64{
		"Alpha": 2.0,
		"Beta":  1.0,
	}, true)

	require.Len(t, out, 2)
	assert.Equal(t, 100.0, out["Beta"], "lowest value scores exactly 100")
	assert.Equal(t, 50.0, out["Alpha"])
}

func TestNormalizeDropsNonPositive(t *testing.T) {
	out := Normalize(map[string]float64{
		"Alpha": 90,
		"Beta":  0,
		"Gamma": -3,
	}, false)

	require.Len(t, out, 1)
	assert.Equal(t, 100.0, out["Alpha"])
	_, hasBeta := out["Beta"]
	assert.False(t, hasBeta, "zero means no data, not worst score")
}

func TestNormalizeEmpty(t *testing.T) {
	assert.Empty(t, Normalize(nil, false))
	assert.Empty(t, Normalize(map[string]float64{}, true))
	assert.Empty(t, Normalize(map[string]float64{"Alpha": 0}, false))
}

func TestCompositeProportionalReweighting(t *testing.T) {
	weights := Weights{"speed": 0.25, "cost": 0.75}

	// Present in exactly one category: the weight cancels and the
	// composite equals that category's normalized value.
	norm := map[string]map[string]float64{
		"speed": {"Alpha": 62.5},
	}
	composite, present, ok := Composite(norm, weights, "Alpha")
	require.True(t, ok)
	assert.Equal(t, 1, present)
	assert.Equal(t, 62.5, composite)
}

func TestCompositeTwoCategories(t *testing.T) {
	weights := Weights{"speed": 0.5, "cost": 0.5}
	norm := map[string]map[string]float64{
		"speed": {"Alpha": 100, "Beta": 50},
		"cost":  {"Alpha": 50, "Beta": 100},
	}

	a, present, ok := Composite(norm, weights, "Alpha")
	require.True(t, ok)
	assert.Equal(t, 2, present)
	assert.Equal(t, 75.0, a)

	b, _, ok := Composite(norm, weights, "Beta")
	require.True(t, ok)
	assert.Equal(t, 75.0, b)
}

func TestCompositeNoData(t *testing.T) {
	_, present, ok := Composite(map[string]map[string]float64{}, Weights{"speed": 1}, "Alpha")
	assert.False(t, ok)
	assert.Equal(t, 0, present)
}

func TestCompositeDeterministic(t *testing.T) {
	weights := Weights{"a": 0.2, "b": 0.3, "c": 0.1, "d": 0.4}
	norm := map[string]map[string]float64{
		"a": {"X": 81.3},
		"b": {"X": 33.7},
		"c": {"X": 97.1},
		"d": {"X": 12.9},
	}

	first, _, _ := Composite(norm, weights, "X")
	for i := 0; i < 50; i++ {
		again, _, _ := Composite(norm, weights, "X")
		require.Equal(t, first, again)
	}
}

func TestDampen(t *testing.T) {
	// base 0.70, 1 of 4 categories: factor = 0.70 + 0.30*0.25 = 0.775.
	assert.Equal(t, 77.5, Dampen(100, 1, 4, 0.70))

	// Full coverage is undamped.
	assert.Equal(t, 100.0, Dampen(100, 4, 4, 0.70))

	// Disabled dampener passes through.
	assert.Equal(t, 55.5, Dampen(55.5, 1, 4, 0))
	assert.Equal(t, 55.5, Dampen(55.5, 1, 4, 1))
}

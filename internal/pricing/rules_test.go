package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCategoryMultiplier(t *testing.T) {
	assert.Equal(t, 2.5, CategoryMultiplier("Fine Art"))
	assert.Equal(t, 1.8, CategoryMultiplier("Vintage Watches"))
	assert.Equal(t, 1.0, CategoryMultiplier("Garden Gnomes"))
	assert.Equal(t, 1.0, CategoryMultiplier(""))
}

func TestConditionAndRarityFallbacks(t *testing.T) {
	assert.Equal(t, 0.3, conditionMultiplierFor(ConditionPoor))
	assert.Equal(t, 1.0, conditionMultiplierFor(Condition("MINT")))

	assert.Equal(t, 4.0, rarityMultiplierFor(RarityExtremelyRare))
	assert.Equal(t, 1.0, rarityMultiplierFor(Rarity("LEGENDARY")))
}

func TestAgeMultiplier(t *testing.T) {
	now := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		year string
		want float64
	}{
		{"2030", 1.0}, // future year treated as unknown
		{"2020", 0.9}, // recent
		{"2005", 1.0}, // contemporary
		{"1990", 1.2}, // vintage
		{"1950", 1.5}, // antique
		{"1900", 2.0}, // very old

		// Decade forms resolve to their first year; leading non-digit
		// input stays unknown.
		{"1960s", 1.5},
		{"1990s", 1.2},
		{" 1950 ", 1.5},
		{"circa 1900", 1.0},
		{"", 1.0},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ageMultiplier(tc.year, now), "year %q", tc.year)
	}
}

func TestDecadeBonus(t *testing.T) {
	assert.Equal(t, 1.15, decadeBonus("1925"))
	assert.Equal(t, 1.1, decadeBonus("1956"))
	assert.Equal(t, 1.05, decadeBonus("1989"))
	assert.Equal(t, 1.0, decadeBonus("1940"))
	assert.Equal(t, 1.15, decadeBonus("1960s")) // decade form
	assert.Equal(t, 1.08, decadeBonus("1970s"))
	assert.Equal(t, 1.0, decadeBonus("not a year"))
}

func TestRangeForConfidence(t *testing.T) {
	assert.Equal(t, rangeHighConfidence, rangeForConfidence(80))
	assert.Equal(t, rangeHighConfidence, rangeForConfidence(95))
	assert.Equal(t, rangeMediumConfidence, rangeForConfidence(79.9))
	assert.Equal(t, rangeMediumConfidence, rangeForConfidence(60))
	assert.Equal(t, rangeLowConfidence, rangeForConfidence(59.9))
	assert.Equal(t, rangeLowConfidence, rangeForConfidence(0))
}

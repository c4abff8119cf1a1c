package pricing

import (
	"strconv"
	"strings"
	"time"
)

// categoryBaseMultiplier scales the AI base price by product category.
// Unknown categories fall back to the "default" entry.
var categoryBaseMultiplier = map[string]float64{
	"Vintage Watches":     1.8,
	"Antique Furniture":   1.5,
	"Fine Art":            2.5,
	"Coins & Currency":    1.6,
	"Stamps & Philately":  1.3,
	"Jewelry":             2.0,
	"Books & Manuscripts": 1.4,
	"Ceramics & Pottery":  1.5,
	"Glass":               1.2,
	"Memorabilia":         1.3,
	"Musical Instruments": 1.9,
	"Toys & Games":        1.1,
	"Sports Equipment":    1.2,
	"Militaria":           1.4,
	"Photography":         1.7,
	"default":             1.0,
}

// conditionMultiplier adjusts price by physical condition.
var conditionMultiplier = map[Condition]float64{
	ConditionExcellent: 1.0,
	ConditionVeryGood:  0.85,
	ConditionGood:      0.7,
	ConditionFair:      0.5,
	ConditionPoor:      0.3,
}

// rarityMultiplier adjusts price by scarcity.
var rarityMultiplier = map[Rarity]float64{
	RarityCommon:        0.8,
	RarityUncommon:      1.0,
	RarityRare:          1.5,
	RarityVeryRare:      2.5,
	RarityExtremelyRare: 4.0,
}

// CategoryMultiplier returns the base multiplier for a category, falling
// back to the default entry for unrecognized categories.
func CategoryMultiplier(category string) float64 {
	if m, ok := categoryBaseMultiplier[category]; ok {
		return m
	}
	return categoryBaseMultiplier["default"]
}

func conditionMultiplierFor(c Condition) float64 {
	if m, ok := conditionMultiplier[c]; ok {
		return m
	}
	return 1.0
}

func rarityMultiplierFor(r Rarity) float64 {
	if m, ok := rarityMultiplier[r]; ok {
		return m
	}
	return 1.0
}

// parseYear reads the leading digit run of a year-or-decade string, so
// decade forms like "1960s" resolve to 1960. Strings that do not start
// with a digit report false.
func parseYear(yearOrDecade string) (int, bool) {
	s := strings.TrimSpace(yearOrDecade)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	year, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return year, true
}

// ageMultiplier returns the appreciation multiplier for an estimated
// production year. Vintage and antique items appreciate with age.
func ageMultiplier(yearOrDecade string, now time.Time) float64 {
	year, ok := parseYear(yearOrDecade)
	if !ok {
		return 1.0
	}
	age := now.Year() - year

	switch {
	case age < 0:
		return 1.0 // invalid year
	case age < 10:
		return 0.9 // recent
	case age < 25:
		return 1.0 // contemporary
	case age < 50:
		return 1.2 // vintage
	case age < 100:
		return 1.5 // antique
	default:
		return 2.0 // very old
	}
}

// highDemandDecades maps particularly collectible decades to a bonus.
var highDemandDecades = map[int]float64{
	1920: 1.15, // Art Deco
	1930: 1.12, // Art Deco continuation
	1950: 1.1,  // Mid-century modern
	1960: 1.15, // Space age / psychedelic
	1970: 1.08, // Retro/vintage
	1980: 1.05, // Emerging collectible
}

// decadeBonus returns the bonus multiplier for high-demand decades.
func decadeBonus(yearOrDecade string) float64 {
	year, ok := parseYear(yearOrDecade)
	if !ok {
		return 1.0
	}
	decade := (year / 10) * 10
	if bonus, ok := highDemandDecades[decade]; ok {
		return bonus
	}
	return 1.0
}

// Confidence factor impacts. Positive values raise the final confidence,
// negative values lower it.
const (
	impactExcellentAIConfidence = 25.0 // AI was 90%+ confident
	impactGoodAIConfidence      = 15.0
	impactComparableSalesFound  = 20.0
	impactMultipleComparables   = 15.0
	impactReasonableRange       = 10.0 // historical and market agree
	impactRareItemPenalty       = -20.0
	impactLimitedCompsPenalty   = -15.0
	impactTrendingUp            = 10.0
	impactTrendingDown          = -10.0
)

// rangeMultipliers defines the confidence interval around the suggested
// price for a confidence tier.
type rangeMultipliers struct {
	Low  float64
	High float64
}

var (
	rangeHighConfidence   = rangeMultipliers{Low: 0.85, High: 1.15} // +/-15%
	rangeMediumConfidence = rangeMultipliers{Low: 0.75, High: 1.25} // +/-25%
	rangeLowConfidence    = rangeMultipliers{Low: 0.65, High: 1.35} // +/-35%
)

// rangeForConfidence picks the interval tier for a confidence score.
func rangeForConfidence(confidence float64) rangeMultipliers {
	switch {
	case confidence >= 80:
		return rangeHighConfidence
	case confidence >= 60:
		return rangeMediumConfidence
	default:
		return rangeLowConfidence
	}
}

// Source weights for the blended price: AI 50%, historical 30%, market 20%.
const (
	weightAI         = 0.5
	weightHistorical = 0.3
	weightMarket     = 0.2
)

// Total multiplier boundaries. Keeps stacked multipliers from producing
// runaway prices in either direction.
const (
	multiplierMin = 0.1
	multiplierMax = 10.0
)

// Package pricing implements the multi-source price blending engine.
//
// Up to three estimates contribute to a suggested price: the AI vision
// estimate adjusted by category/condition/rarity/age multipliers, a
// historical estimate derived from comparable sales, and a market estimate
// derived from category trend data. Each source carries its own confidence,
// and a list of named confidence factors explains the final score.
package pricing

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// CalculateHistoricalPrice derives a price estimate from comparable sale
// prices using a median and interquartile midpoint blend. A zero price is
// the sentinel for "no usable evidence" and is excluded from blending.
func CalculateHistoricalPrice(comps []float64) SourceEstimate {
	if len(comps) == 0 {
		return SourceEstimate{
			Price:      0,
			Confidence: 0,
			Reasoning:  "No comparable sales data available",
		}
	}

	sorted := make([]float64, len(comps))
	copy(sorted, comps)
	sort.Float64s(sorted)

	n := len(sorted)
	median := sorted[n/2]
	q1 := sorted[n/4]
	q3 := sorted[n*3/4]

	// A non-positive median would divide by zero below. Treat the whole
	// source as absent rather than letting NaN reach the blend.
	if median <= 0 {
		return SourceEstimate{
			Price:      0,
			Confidence: 0,
			Reasoning:  "Comparable sales contain no positive prices",
		}
	}

	// Weight median higher for stability.
	price := median*0.5 + (q1+q3)/2*0.5

	// Confidence increases with the number of comps and a narrow range.
	iqr := q3 - q1
	rangeConfidence := math.Max(0, 100-(iqr/median)*100)
	countConfidence := math.Min(100, float64(n)*15)
	confidence := math.Min(100, (rangeConfidence+countConfidence)/2)

	return SourceEstimate{
		Price:      price,
		Confidence: confidence,
		Reasoning: fmt.Sprintf("Based on %d comparable sales (median: $%.2f, range: $%.2f-$%.2f)",
			n, median, q1, q3),
	}
}

// CalculateMarketPrice derives a price estimate from category trend data.
// Confidence is driven by how tight the quoted market range is relative to
// the average price.
func CalculateMarketPrice(marketData *MarketTrendData, categoryMultiplier float64) SourceEstimate {
	if marketData == nil {
		return SourceEstimate{
			Price:      0,
			Confidence: 0,
			Reasoning:  "No market trend data available",
		}
	}

	trendMultiplier := 1.0
	switch marketData.TrendDirection {
	case TrendUp:
		trendMultiplier = 1.1
	case TrendDown:
		trendMultiplier = 0.9
	}

	price := marketData.AveragePrice * trendMultiplier * categoryMultiplier

	confidence := 0.0
	if marketData.AveragePrice > 0 {
		spread := marketData.PriceRange[1] - marketData.PriceRange[0]
		rangePercent := spread / marketData.AveragePrice * 100
		confidence = math.Min(100, math.Max(0, 100-rangePercent))
	}

	return SourceEstimate{
		Price:      price,
		Confidence: confidence,
		Reasoning: fmt.Sprintf("Market average: $%.2f, trend: %s, category multiplier: %.2fx",
			marketData.AveragePrice, marketData.TrendDirection, categoryMultiplier),
	}
}

// aiAdjustment is the AI price after multipliers, with the individual
// multiplier values kept for the reasoning string.
type aiAdjustment struct {
	AdjustedPrice float64
	Category      float64
	Condition     float64
	Rarity        float64
	Age           float64
	Decade        float64
}

// calculateAIPrice applies the five static multipliers to the AI base
// price. The stacked multiplier is clamped into [multiplierMin,
// multiplierMax] to prevent extreme outliers.
func calculateAIPrice(basePrice float64, category string, condition Condition, rarity Rarity, estimatedAge string, now time.Time) aiAdjustment {
	adj := aiAdjustment{
		Category:  CategoryMultiplier(category),
		Condition: conditionMultiplierFor(condition),
		Rarity:    rarityMultiplierFor(rarity),
		Age:       ageMultiplier(estimatedAge, now),
		Decade:    decadeBonus(estimatedAge),
	}

	total := adj.Category * adj.Condition * adj.Rarity * adj.Age * adj.Decade
	total = math.Max(multiplierMin, math.Min(multiplierMax, total))

	adj.AdjustedPrice = basePrice * total
	return adj
}

// calculateConfidenceFactors evaluates the named confidence adjustments in
// a fixed order. The list doubles as the audit trail shown to admins and
// as the numeric adjustment summed into the final confidence.
func calculateConfidenceFactors(in *Input, historicalPrice, marketPrice float64) []ConfidenceFactor {
	var factors []ConfidenceFactor

	// AI self-confidence tier.
	if in.AIConfidence >= 90 {
		factors = append(factors, ConfidenceFactor{
			Factor:    "Excellent AI Confidence",
			Impact:    impactExcellentAIConfidence,
			Reasoning: fmt.Sprintf("AI analysis was %.0f%% confident", in.AIConfidence),
		})
	} else if in.AIConfidence >= 70 {
		factors = append(factors, ConfidenceFactor{
			Factor:    "Good AI Confidence",
			Impact:    impactGoodAIConfidence,
			Reasoning: fmt.Sprintf("AI analysis was %.0f%% confident", in.AIConfidence),
		})
	}

	// Comparable sales evidence.
	if len(in.HistoricalComps) > 0 {
		factors = append(factors, ConfidenceFactor{
			Factor:    "Comparable Sales Data",
			Impact:    impactComparableSalesFound,
			Reasoning: fmt.Sprintf("Found %d comparable sales", len(in.HistoricalComps)),
		})
		if len(in.HistoricalComps) >= 5 {
			factors = append(factors, ConfidenceFactor{
				Factor:    "Multiple Comparable Sales",
				Impact:    impactMultipleComparables,
				Reasoning: fmt.Sprintf("%d data points provide strong validation", len(in.HistoricalComps)),
			})
		}
	} else {
		factors = append(factors, ConfidenceFactor{
			Factor:    "Limited Comparable Sales",
			Impact:    impactLimitedCompsPenalty,
			Reasoning: "Few or no comparable sales found for this item",
		})
	}

	// Rare items are harder to price accurately.
	if in.Rarity == RarityExtremelyRare || in.Rarity == RarityVeryRare {
		factors = append(factors, ConfidenceFactor{
			Factor:    "Rare Item Pricing Challenge",
			Impact:    impactRareItemPenalty,
			Reasoning: fmt.Sprintf("%s items are harder to price accurately", in.Rarity),
		})
	}

	// Market trend direction.
	if in.MarketTrendData != nil {
		switch in.MarketTrendData.TrendDirection {
		case TrendUp:
			factors = append(factors, ConfidenceFactor{
				Factor:    "Trending Market",
				Impact:    impactTrendingUp,
				Reasoning: "Market for this category is trending upward",
			})
		case TrendDown:
			factors = append(factors, ConfidenceFactor{
				Factor:    "Declining Market",
				Impact:    impactTrendingDown,
				Reasoning: "Market for this category is declining",
			})
		}
	}

	// Agreement between independent sources.
	if historicalPrice > 0 && marketPrice > 0 {
		agreement := math.Abs(historicalPrice-marketPrice) / ((historicalPrice + marketPrice) / 2)
		if agreement < 0.2 {
			factors = append(factors, ConfidenceFactor{
				Factor:    "Strong Price Agreement",
				Impact:    impactReasonableRange,
				Reasoning: "Historical and market prices align well",
			})
		}
	}

	return factors
}

// CalculatePriceWithConfidence blends all available evidence into one
// suggested price with a calibrated confidence score and price range.
//
// The base confidence starts at the AI self-confidence and is averaged
// with each contributing source's confidence in turn, historical first,
// then market. The sequential averaging halves earlier contributions and
// is therefore order dependent; the order is fixed and pinned by tests.
func CalculatePriceWithConfidence(in *Input) (*Result, error) {
	start := time.Now()
	if err := in.Validate(); err != nil {
		recordValidationError(err)
		return nil, err
	}
	defer func() {
		recordCalculation(time.Since(start))
	}()

	now := time.Now()

	// Step 1: AI price with multipliers.
	ai := calculateAIPrice(in.AIPrice, in.Category, in.Condition, in.Rarity, in.EstimatedAge, now)

	// Step 2: historical price from comps.
	historical := CalculateHistoricalPrice(in.HistoricalComps)

	// Step 3: market price from trend data. The category multiplier is
	// re-derived here, independent of the clamped AI stack.
	market := CalculateMarketPrice(in.MarketTrendData, CategoryMultiplier(in.Category))

	// Step 4: confidence factors.
	factors := calculateConfidenceFactors(in, historical.Price, market.Price)

	// Step 5: weighted blend of contributing sources.
	weightedPrice := ai.AdjustedPrice * weightAI
	totalWeight := weightAI
	baseConfidence := in.AIConfidence

	if historical.Price > 0 {
		weightedPrice += historical.Price * weightHistorical
		totalWeight += weightHistorical
		baseConfidence = (baseConfidence + historical.Confidence) / 2
	}
	if market.Price > 0 {
		weightedPrice += market.Price * weightMarket
		totalWeight += weightMarket
		baseConfidence = (baseConfidence + market.Confidence) / 2
	}

	suggestedPrice := weightedPrice / totalWeight

	// Step 6: apply factor adjustments, clamped to [0, 100].
	adjustment := 0.0
	for _, f := range factors {
		adjustment += f.Impact
	}
	finalConfidence := math.Max(0, math.Min(100, baseConfidence+adjustment))

	// Step 7: price range from the confidence tier.
	rng := rangeForConfidence(finalConfidence)

	// Step 8: assemble the result, money rounded to cents.
	result := &Result{
		SuggestedPrice: roundCents(suggestedPrice),
		LowRange:       roundCents(suggestedPrice * rng.Low),
		HighRange:      roundCents(suggestedPrice * rng.High),
		Confidence:     int(math.Round(finalConfidence)),
		Breakdown: Breakdown{
			AIPrice: SourceEstimate{
				Price:      roundCents(ai.AdjustedPrice),
				Confidence: in.AIConfidence,
				Reasoning: fmt.Sprintf(
					"AI base price: $%.2f, multipliers applied: category (%.2fx), condition (%.2fx), rarity (%.2fx), age (%.2fx)",
					in.AIPrice, ai.Category, ai.Condition, ai.Rarity, ai.Age),
			},
		},
		Factors:   factors,
		Timestamp: now,
	}

	result.Sources = append(result.Sources, Source{
		Name:       SourceAI,
		Price:      ai.AdjustedPrice,
		Confidence: in.AIConfidence,
		Weight:     weightAI * 100,
		Reasoning:  "AI-generated price with category, condition, and rarity adjustments",
	})

	if historical.Price > 0 {
		est := historical
		result.Breakdown.HistoricalPrice = &est
		result.Sources = append(result.Sources, Source{
			Name:       SourceHistorical,
			Price:      historical.Price,
			Confidence: historical.Confidence,
			Weight:     weightHistorical * 100,
			Reasoning:  historical.Reasoning,
		})
	}
	if market.Price > 0 {
		est := market
		result.Breakdown.MarketPrice = &est
		result.Sources = append(result.Sources, Source{
			Name:       SourceMarket,
			Price:      market.Price,
			Confidence: market.Confidence,
			Weight:     weightMarket * 100,
			Reasoning:  market.Reasoning,
		})
	}

	recordResult(result)
	return result, nil
}

// CalculateSimplePrice applies only the five multipliers to a base price.
// Used where full confidence reporting is unnecessary.
func CalculateSimplePrice(basePrice float64, category string, condition Condition, rarity Rarity, estimatedAge string) float64 {
	adj := calculateAIPrice(basePrice, category, condition, rarity, estimatedAge, time.Now())
	return roundCents(adj.AdjustedPrice)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

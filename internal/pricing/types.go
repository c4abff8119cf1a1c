package pricing

import (
	"math"
	"time"
)

// Condition classifies the physical state of an item.
type Condition string

const (
	ConditionExcellent Condition = "EXCELLENT"
	ConditionVeryGood  Condition = "VERY_GOOD"
	ConditionGood      Condition = "GOOD"
	ConditionFair      Condition = "FAIR"
	ConditionPoor      Condition = "POOR"
)

// Rarity classifies how scarce an item is.
type Rarity string

const (
	RarityCommon        Rarity = "COMMON"
	RarityUncommon      Rarity = "UNCOMMON"
	RarityRare          Rarity = "RARE"
	RarityVeryRare      Rarity = "VERY_RARE"
	RarityExtremelyRare Rarity = "EXTREMELY_RARE"
)

// TrendDirection describes the direction of a category's market trend.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// MarketTrendData carries market evidence for a category.
type MarketTrendData struct {
	AveragePrice   float64        `json:"averagePrice"`
	PriceRange     [2]float64     `json:"priceRange"` // [low, high]
	TrendDirection TrendDirection `json:"trendDirection"`
}

// Input contains all evidence available for pricing a single item.
type Input struct {
	ProductTitle    string           `json:"productTitle"`
	Category        string           `json:"category"`
	Condition       Condition        `json:"condition"`
	Rarity          Rarity           `json:"rarity"`
	EstimatedAge    string           `json:"estimatedAge"` // year or decade, e.g. "1960"
	AIPrice         float64          `json:"aiPrice"`
	AIConfidence    float64          `json:"aiConfidence"` // 0-100
	HistoricalComps []float64        `json:"historicalComps,omitempty"`
	MarketTrendData *MarketTrendData `json:"marketTrendData,omitempty"`
}

// SourceName identifies a price evidence source.
type SourceName string

const (
	SourceAI         SourceName = "ai"
	SourceHistorical SourceName = "historical"
	SourceMarket     SourceName = "market"
)

// SourceEstimate is one source's contribution to the blended price.
type SourceEstimate struct {
	Price      float64 `json:"price"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Source is a reporting entry for a contributing source, including its
// blend weight expressed as a percentage.
type Source struct {
	Name       SourceName `json:"name"`
	Price      float64    `json:"price"`
	Confidence float64    `json:"confidence"`
	Weight     float64    `json:"weight"` // 0-100
	Reasoning  string     `json:"reasoning"`
}

// Breakdown holds per-source estimates. Historical and market entries are
// nil when the source produced no usable price.
type Breakdown struct {
	AIPrice         SourceEstimate  `json:"aiPrice"`
	HistoricalPrice *SourceEstimate `json:"historicalPrice,omitempty"`
	MarketPrice     *SourceEstimate `json:"marketPrice,omitempty"`
}

// ConfidenceFactor is a named, signed adjustment applied to the baseline
// confidence score, with a human-readable rationale.
type ConfidenceFactor struct {
	Factor    string  `json:"factor"`
	Impact    float64 `json:"impact"`
	Reasoning string  `json:"reasoning"`
}

// Result is the engine's recommendation for a single item.
// LowRange <= SuggestedPrice <= HighRange holds for every valid result.
type Result struct {
	SuggestedPrice float64            `json:"suggestedPrice"`
	LowRange       float64            `json:"lowRange"`
	HighRange      float64            `json:"highRange"`
	Confidence     int                `json:"confidence"` // 0-100
	Breakdown      Breakdown          `json:"breakdown"`
	Sources        []Source           `json:"sources"`
	Factors        []ConfidenceFactor `json:"factors"`
	Timestamp      time.Time          `json:"timestamp"`
}

// Validate checks the input for values the engine cannot price.
// Non-finite or non-positive prices are rejected here instead of being
// allowed to propagate NaN through the blend.
func (in *Input) Validate() error {
	if in.AIPrice <= 0 || math.IsNaN(in.AIPrice) || math.IsInf(in.AIPrice, 0) {
		return ErrInvalidInput{Field: "aiPrice", Reason: "must be a positive finite number"}
	}
	if in.AIConfidence < 0 || in.AIConfidence > 100 || math.IsNaN(in.AIConfidence) {
		return ErrInvalidInput{Field: "aiConfidence", Reason: "must be between 0 and 100"}
	}
	for i, comp := range in.HistoricalComps {
		if comp <= 0 || math.IsNaN(comp) || math.IsInf(comp, 0) {
			return ErrInvalidInput{Field: "historicalComps", Reason: "comparable prices must be positive finite numbers", Index: i}
		}
	}
	if md := in.MarketTrendData; md != nil {
		if md.AveragePrice <= 0 || math.IsNaN(md.AveragePrice) || math.IsInf(md.AveragePrice, 0) {
			return ErrInvalidInput{Field: "marketTrendData.averagePrice", Reason: "must be a positive finite number"}
		}
		if md.PriceRange[1] < md.PriceRange[0] {
			return ErrInvalidInput{Field: "marketTrendData.priceRange", Reason: "high bound must not be below low bound"}
		}
		switch md.TrendDirection {
		case TrendUp, TrendDown, TrendStable:
		default:
			return ErrInvalidInput{Field: "marketTrendData.trendDirection", Reason: "must be up, down or stable"}
		}
	}
	return nil
}

// ErrInvalidInput is returned when a pricing input cannot be processed.
type ErrInvalidInput struct {
	Field  string
	Reason string
	Index  int
}

func (e ErrInvalidInput) Error() string {
	return e.Field + ": " + e.Reason
}

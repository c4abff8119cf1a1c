package ai

import (
	"fmt"
	"math"
	"strings"
)

// Authenticity classifies how confident the model is that an item is
// genuine.
type Authenticity string

const (
	AuthenticityVerified     Authenticity = "VERIFIED"
	AuthenticityLikely       Authenticity = "LIKELY_AUTHENTIC"
	AuthenticityUncertain    Authenticity = "UNCERTAIN"
	AuthenticityReproduction Authenticity = "LIKELY_REPRODUCTION"
)

// Output contract boundaries. The model is prompted with these limits
// and Validate enforces them; out-of-contract drafts never reach the
// approval queue.
const (
	maxTitleLength       = 120
	minDescriptionWords  = 30
	maxDescriptionWords  = 400
	requiredKeywordCount = 5
	minSEOTitleLength    = 10
	maxSEOTitleLength    = 70
	minSEODescriptionLen = 50
	maxSEODescriptionLen = 160
)

var validConditions = map[string]bool{
	"EXCELLENT": true, "VERY_GOOD": true, "GOOD": true, "FAIR": true, "POOR": true,
}

var validRarities = map[string]bool{
	"COMMON": true, "UNCOMMON": true, "RARE": true, "VERY_RARE": true, "EXTREMELY_RARE": true,
}

// ProductAnalysis is the structured listing draft returned by the model.
type ProductAnalysis struct {
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Category       string       `json:"category"`
	Condition      string       `json:"condition"`
	Rarity         string       `json:"rarity"`
	EstimatedAge   string       `json:"estimatedAge"`
	Materials      []string     `json:"materials"`
	Authenticity   Authenticity `json:"authenticity"`
	SuggestedPrice float64      `json:"suggestedPrice"`
	Confidence     float64      `json:"confidence"` // 0-100
	Keywords       []string     `json:"keywords"`
	SEOTitle       string       `json:"seoTitle"`
	SEODescription string       `json:"seoDescription"`
	Reasoning      string       `json:"reasoning"`
}

// Validate enforces the output contract. Model output is untrusted
// input; anything out of contract is rejected rather than repaired.
func (a *ProductAnalysis) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("title: must not be empty")
	}
	if len(a.Title) > maxTitleLength {
		return fmt.Errorf("title: exceeds %d characters", maxTitleLength)
	}

	words := len(strings.Fields(a.Description))
	if words < minDescriptionWords || words > maxDescriptionWords {
		return fmt.Errorf("description: %d words, want %d-%d", words, minDescriptionWords, maxDescriptionWords)
	}

	if strings.TrimSpace(a.Category) == "" {
		return fmt.Errorf("category: must not be empty")
	}
	if !validConditions[a.Condition] {
		return fmt.Errorf("condition: %q is not a recognized grade", a.Condition)
	}
	if !validRarities[a.Rarity] {
		return fmt.Errorf("rarity: %q is not a recognized tier", a.Rarity)
	}

	switch a.Authenticity {
	case AuthenticityVerified, AuthenticityLikely, AuthenticityUncertain, AuthenticityReproduction:
	default:
		return fmt.Errorf("authenticity: %q is not a recognized classification", a.Authenticity)
	}

	if a.SuggestedPrice <= 0 || math.IsNaN(a.SuggestedPrice) || math.IsInf(a.SuggestedPrice, 0) {
		return fmt.Errorf("suggestedPrice: must be a positive finite number")
	}
	if a.Confidence < 0 || a.Confidence > 100 || math.IsNaN(a.Confidence) {
		return fmt.Errorf("confidence: must be between 0 and 100")
	}

	if len(a.Keywords) != requiredKeywordCount {
		return fmt.Errorf("keywords: got %d, want exactly %d", len(a.Keywords), requiredKeywordCount)
	}
	for i, kw := range a.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("keywords[%d]: must not be empty", i)
		}
	}

	if n := len(a.SEOTitle); n < minSEOTitleLength || n > maxSEOTitleLength {
		return fmt.Errorf("seoTitle: %d characters, want %d-%d", n, minSEOTitleLength, maxSEOTitleLength)
	}
	if n := len(a.SEODescription); n < minSEODescriptionLen || n > maxSEODescriptionLen {
		return fmt.Errorf("seoDescription: %d characters, want %d-%d", n, minSEODescriptionLen, maxSEODescriptionLen)
	}

	return nil
}

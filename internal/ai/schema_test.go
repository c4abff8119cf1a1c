package ai

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validAnalysis() ProductAnalysis {
	return ProductAnalysis{
		Title: "Georgian Sterling Silver Teapot, London 1820",
		Description: strings.Repeat("A finely crafted example with original patina and crisp hallmarks. ", 6) +
			"The hinged lid closes cleanly and the handle is firm.",
		Category:       "Jewelry",
		Condition:      "VERY_GOOD",
		Rarity:         "RARE",
		EstimatedAge:   "1820",
		Materials:      []string{"sterling silver", "ebony"},
		Authenticity:   AuthenticityLikely,
		SuggestedPrice: 1450,
		Confidence:     82,
		Keywords:       []string{"georgian", "silver", "teapot", "antique", "sterling"},
		SEOTitle:       "Georgian Sterling Silver Teapot 1820",
		SEODescription: "Authentic Georgian sterling silver teapot from 1820 with crisp London hallmarks and original patina.",
	}
}

func TestProductAnalysis_Validate(t *testing.T) {
	t.Run("valid analysis passes", func(t *testing.T) {
		a := validAnalysis()
		assert.NoError(t, a.Validate())
	})

	mutations := []struct {
		name   string
		mutate func(*ProductAnalysis)
	}{
		{"empty title", func(a *ProductAnalysis) { a.Title = "  " }},
		{"oversized title", func(a *ProductAnalysis) { a.Title = strings.Repeat("x", 121) }},
		{"short description", func(a *ProductAnalysis) { a.Description = "too short" }},
		{"empty category", func(a *ProductAnalysis) { a.Category = "" }},
		{"bad condition", func(a *ProductAnalysis) { a.Condition = "MINT" }},
		{"bad rarity", func(a *ProductAnalysis) { a.Rarity = "LEGENDARY" }},
		{"bad authenticity", func(a *ProductAnalysis) { a.Authenticity = "GENUINE" }},
		{"zero price", func(a *ProductAnalysis) { a.SuggestedPrice = 0 }},
		{"nan price", func(a *ProductAnalysis) { a.SuggestedPrice = math.NaN() }},
		{"infinite price", func(a *ProductAnalysis) { a.SuggestedPrice = math.Inf(1) }},
		{"confidence over 100", func(a *ProductAnalysis) { a.Confidence = 101 }},
		{"four keywords", func(a *ProductAnalysis) { a.Keywords = a.Keywords[:4] }},
		{"six keywords", func(a *ProductAnalysis) { a.Keywords = append(a.Keywords, "extra") }},
		{"blank keyword", func(a *ProductAnalysis) { a.Keywords[2] = " " }},
		{"short seo title", func(a *ProductAnalysis) { a.SEOTitle = "Teapot" }},
		{"long seo description", func(a *ProductAnalysis) { a.SEODescription = strings.Repeat("a", 161) }},
		{"short seo description", func(a *ProductAnalysis) { a.SEODescription = "Nice teapot." }},
	}

	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			a := validAnalysis()
			tc.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

const systemPrompt = `You are an expert appraiser for a luxury antiques and vintage marketplace.
Given a seller's raw item description, draft a complete listing.

Respond with a single JSON object and nothing else:
{
  "title": "listing title, at most 120 characters",
  "description": "30-400 words of sales copy",
  "category": "marketplace category",
  "condition": "EXCELLENT | VERY_GOOD | GOOD | FAIR | POOR",
  "rarity": "COMMON | UNCOMMON | RARE | VERY_RARE | EXTREMELY_RARE",
  "estimatedAge": "production year or decade, e.g. 1965",
  "materials": ["list of materials"],
  "authenticity": "VERIFIED | LIKELY_AUTHENTIC | UNCERTAIN | LIKELY_REPRODUCTION",
  "suggestedPrice": 1234.56,
  "confidence": 85,
  "keywords": ["exactly", "five", "search", "keywords", "here"],
  "seoTitle": "10-70 characters",
  "seoDescription": "50-160 characters",
  "reasoning": "how you arrived at the price"
}`

// AnalyzeRequest is the seller-provided raw material for a draft.
type AnalyzeRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
}

// Analyzer turns seller submissions into validated listing drafts.
type Analyzer struct {
	client Client
	logger zerolog.Logger
}

// NewAnalyzer creates an analyzer on top of client.
func NewAnalyzer(client Client, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		client: client,
		logger: logger.With().Str("component", "ai-analyzer").Logger(),
	}
}

// Analyze asks the model for a listing draft and validates it against
// the output contract.
func (a *Analyzer) Analyze(ctx context.Context, req AnalyzeRequest) (*ProductAnalysis, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Item: %s\n", req.Title)
	fmt.Fprintf(&sb, "Seller notes: %s\n", req.Description)
	if req.Category != "" {
		fmt.Fprintf(&sb, "Suggested category: %s\n", req.Category)
	}

	raw, err := a.client.CreateMessage(ctx, systemPrompt, sb.String())
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(raw)
	if err != nil {
		a.logger.Warn().Err(err).Int("response_len", len(raw)).Msg("Model returned unparseable analysis")
		return nil, err
	}

	if err := analysis.Validate(); err != nil {
		a.logger.Warn().Err(err).Str("title", analysis.Title).Msg("Model analysis failed contract validation")
		return nil, fmt.Errorf("analysis rejected: %w", err)
	}

	return analysis, nil
}

// parseAnalysis extracts the JSON object from a model response. Models
// occasionally wrap JSON in a fenced block or prose despite instructions,
// so parsing falls back from strictest to loosest.
func parseAnalysis(raw string) (*ProductAnalysis, error) {
	trimmed := strings.TrimSpace(raw)

	// Direct parse.
	var analysis ProductAnalysis
	if err := json.Unmarshal([]byte(trimmed), &analysis); err == nil {
		return &analysis, nil
	}

	// Fenced code block.
	if block := extractFencedBlock(trimmed); block != "" {
		if err := json.Unmarshal([]byte(block), &analysis); err == nil {
			return &analysis, nil
		}
	}

	// First balanced object embedded in prose.
	if obj := extractBalancedObject(trimmed); obj != "" {
		if err := json.Unmarshal([]byte(obj), &analysis); err == nil {
			return &analysis, nil
		}
	}

	return nil, fmt.Errorf("no valid JSON object in model response")
}

func extractFencedBlock(s string) string {
	start := strings.Index(s, "```")
	if start < 0 {
		return ""
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Skip the language tag line ("json" or similar).
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func extractBalancedObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

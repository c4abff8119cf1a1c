// Package catalog generates catalog identity for promoted listings: SKUs
// in the SKU-YYYY-NNN series and unique URL slugs.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/vintagevault/pricing-service/internal/database"
)

// Slugify converts a listing title into a URL slug: diacritics stripped,
// lowercased, non-alphanumerics collapsed into single hyphens.
func Slugify(title string) string {
	// NFD normalization + strip combining marks handles accented titles
	// (French furniture makers, Czech glassworks).
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, _ := transform.String(t, title)

	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(ascii) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// NextSKU allocates the next SKU in the current year's series. Sequence
// numbers count existing SKUs for the year, so SKU-2026-001 follows an
// empty year. Call inside the promotion transaction so concurrent
// approvals cannot allocate the same number.
func NextSKU(ctx context.Context, db database.Executor, now time.Time) (string, error) {
	year := now.Year()
	prefix := fmt.Sprintf("SKU-%d-%%", year)

	var count int
	err := db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE sku LIKE $1`, prefix).Scan(&count)
	if err != nil {
		return "", fmt.Errorf("error counting skus for year %d: %w", year, err)
	}

	return fmt.Sprintf("SKU-%d-%03d", year, count+1), nil
}

// UniqueSlug returns Slugify(title), with a short random suffix appended
// when the base slug is already taken.
func UniqueSlug(ctx context.Context, db database.Executor, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "listing"
	}

	var exists bool
	err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1)`, base).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("error checking slug %q: %w", base, err)
	}
	if !exists {
		return base, nil
	}

	suffix := uuid.New().String()[:8]
	return base + "-" + suffix, nil
}

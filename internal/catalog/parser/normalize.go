// internal/catalog/parser/normalize.go
package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"storefront/internal/models"
)

// RupeesPerDollar converts source prices (INR) to USD.
const RupeesPerDollar = 83

const UnknownBrand = "Unknown"

// NormalizeText composes text to NFC, trims it and drops control characters other than
// newline and tab. Compatibility characters such as "½" or "²" are kept as written.
func NormalizeText(text string) string {
	return stripControl(strings.TrimSpace(norm.NFC.String(text)))
}

// normalizeColumn folds a header cell with NFKC so full-width or ligature spellings
// still match the known column names.
func normalizeColumn(name string) string {
	return stripControl(strings.TrimSpace(norm.NFKC.String(name)))
}

func stripControl(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// NormalizePrice keeps digits and dots, parses the longest numeric prefix, converts to USD
// and rounds to cents. Anything unparsable is 0.
func NormalizePrice(text string) float64 {
	var b strings.Builder
	seenDot := false
scan:
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			if seenDot {
				break scan // "1.2.3" parses as 1.2
			}
			seenDot = true
			b.WriteRune(r)
		}
	}

	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
		return 0
	}
	return math.Round(value/RupeesPerDollar*100) / 100
}

// ExtractBrand returns the first whitespace token of name.
func ExtractBrand(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return UnknownBrand
	}
	return fields[0]
}

// TruncateDescription cuts text to limit runes and marks the cut with "...".
func TruncateDescription(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func firstValue(rec models.RawRecord, columns []string) string {
	for _, col := range columns {
		if v := NormalizeText(rec[col]); v != "" {
			return v
		}
	}
	return ""
}

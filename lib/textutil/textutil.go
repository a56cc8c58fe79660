package textutil

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNoAmount = errors.New("no monetary amount in text")
var ErrNoDate = errors.New("no date in text")
var ErrNoYear = errors.New("no 4-digit year in text")

var nonAmount = regexp.MustCompile(`[^0-9.\-]`)
var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// ParseMoney strips currency symbols, commas and surrounding text from
// a value like "$1,234.56" and parses the remainder as a decimal.
func ParseMoney(s string) (decimal.Decimal, error) {
	cleaned := nonAmount.ReplaceAllString(s, "")
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return decimal.Decimal{}, ErrNoAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, ErrNoAmount
	}
	return d, nil
}

var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"2006/01/02",
	"1/2/2006",
}

// ParseDate tries the date formats county sites actually use, most
// specific first.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrNoDate
}

// FindYear returns the first plausible 4-digit year embedded in the
// text, e.g. the 2025 in "2025 Tax Year".
func FindYear(s string) (int, error) {
	match := yearPattern.FindString(s)
	if match == "" {
		return 0, ErrNoYear
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, ErrNoYear
	}
	return year, nil
}

var labelWhitespace = regexp.MustCompile(`\s+`)

// NormalizeLabel lowercases and strips whitespace so label matching is
// insensitive to the formatting noise in rendered HTML.
func NormalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return labelWhitespace.ReplaceAllString(s, " ")
}

// ContainsLabel reports whether the normalized text contains the
// normalized label as a substring.
func ContainsLabel(text, label string) bool {
	return strings.Contains(NormalizeLabel(text), NormalizeLabel(label))
}

package coa

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe    = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	thousandsRe = regexp.MustCompile(`(\d),(\d{3})`)

	// "12 . 34" or "12. 34" left behind by upstream text extraction.
	splitDotRe = regexp.MustCompile(`(\d)[ \t]*\.[ \t]*(\d)`)

	// "12  34 %" where the decimal point was dropped entirely. Only digit
	// groups immediately followed by a unit symbol are rejoined, so two
	// unrelated adjacent numbers stay separate.
	splitGapRe = regexp.MustCompile(`(?i)(\d+)[ \t]{2,}(\d{1,4})([ \t]*(?:%|mg[ \t]*/[ \t]*g|µg[ \t]*/[ \t]*g|ug[ \t]*/[ \t]*g|ppm))`)
)

// ParseNumber extracts the first decimal or integer token from s, after
// removing thousands separators. The second return is false when s contains
// no parseable number.
func ParseNumber(s string) (float64, bool) {
	for strings.Contains(s, ",") {
		next := thousandsRe.ReplaceAllString(s, "$1$2")
		if next == s {
			break
		}
		s = next
	}

	token := numberRe.FindString(s)
	if token == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DetectUnit classifies a unit token. ppm is treated as a synonym of µg/g
// (1 ppm of a mass fraction is 1 µg/g). Unmatched tokens yield UnitUnknown.
func DetectUnit(token string) Unit {
	t := strings.ToLower(strings.TrimSpace(token))
	t = strings.ReplaceAll(t, " ", "")
	t = strings.ReplaceAll(t, "\t", "")

	switch {
	case strings.Contains(t, "%"):
		return UnitPercent
	case strings.Contains(t, "mg/g"):
		return UnitMgPerG
	case strings.Contains(t, "µg/g"), strings.Contains(t, "ug/g"), strings.Contains(t, "ppm"):
		return UnitUgPerG
	}
	return UnitUnknown
}

// PercentFromMgPerG converts a mg/g reading to a mass percentage. The
// conversion is exact: 1% is 10 mg/g by definition of mass fraction.
func PercentFromMgPerG(v float64) float64 {
	return v / 10
}

// PercentFromUgPerG converts a µg/g (ppm) reading to a mass percentage.
func PercentFromUgPerG(v float64) float64 {
	return v / 10000
}

// ToPercent converts a value in the given unit to percent. The second return
// is false for an unknown unit.
func ToPercent(v float64, unit Unit) (float64, bool) {
	switch unit {
	case UnitPercent:
		return v, true
	case UnitMgPerG:
		return PercentFromMgPerG(v), true
	case UnitUgPerG:
		return PercentFromUgPerG(v), true
	default:
		return 0, false
	}
}

// FixOverflow repairs percent values that lost their decimal point in
// upstream text extraction ("1050%" for "10.50%") by dividing by 10 until
// the value is a plausible percentage. Best-effort: a genuinely impossible
// reading comes out wrong rather than rejected.
func FixOverflow(v float64) float64 {
	for v > 100 {
		v /= 10
	}
	return v
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeText prepares a raw text blob for extraction: line endings are
// unified, NUL bytes dropped, and decimal points split across whitespace
// runs are rejoined. All field extractors operate on the normalized text.
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	text = splitDotRe.ReplaceAllString(text, "$1.$2")
	text = splitGapRe.ReplaceAllString(text, "$1.$2$3")

	return text
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package coa

import (
	"regexp"
	"sort"
	"strings"
)

const defaultTopTerpenes = 3

var (
	measurementRe = regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)[ \t]*(%|mg[ \t]*/[ \t]*g|µg[ \t]*/[ \t]*g|ug[ \t]*/[ \t]*g|ppm)?`)

	// A header declaring that bare numbers in the table body are percent
	// values ("Result (%)", "% w/w", "Amount %").
	percentColumnRe = regexp.MustCompile(`(?i)(?:result|amount|conc(?:entration)?|total)\s*\(?\s*%|%\s*(?:w/w|by\s+(?:weight|mass))|\bpercentage\b`)
)

// TerpeneExtractor finds terpene concentration readings in normalized report
// text. It is stateless apart from the read-only dictionary, so one instance
// can serve any number of concurrent extractions.
type TerpeneExtractor struct {
	dict *Dictionary
	topN int
}

// NewTerpeneExtractor creates a terpene extractor over the given dictionary.
func NewTerpeneExtractor(dict *Dictionary) *TerpeneExtractor {
	return &TerpeneExtractor{
		dict: dict,
		topN: defaultTopTerpenes,
	}
}

// PercentColumn reports whether the document header declares a
// percent-column context, which lets unit-less trailing numbers on candidate
// lines count as percent readings.
func (e *TerpeneExtractor) PercentColumn(text string) bool {
	return percentColumnRe.MatchString(text)
}

// Observations scans every line for terpene name/value pairs. Lines without
// a known terpene spelling, a parseable number, or a resolvable unit are
// skipped; degradation is per-line, never fatal.
func (e *TerpeneExtractor) Observations(text string) []TerpeneObservation {
	percentColumn := e.PercentColumn(text)

	var observations []TerpeneObservation
	for i, line := range strings.Split(text, "\n") {
		raw, ok := e.dict.MatchName(line)
		if !ok {
			continue
		}

		value, unit, ok := pickMeasurement(line, percentColumn)
		if !ok {
			continue
		}

		observations = append(observations, TerpeneObservation{
			RawName:       raw,
			CanonicalName: e.dict.Canonicalize(raw),
			Value:         value,
			Unit:          unit,
			Line:          i,
		})
	}

	return observations
}

// pickMeasurement selects the measurement token on a candidate line.
// Priority: explicit % > explicit mg/g > any token whose unit contains "g" >
// (percent-column context only) the last numeric token on the line.
func pickMeasurement(line string, percentColumn bool) (float64, Unit, bool) {
	matches := measurementRe.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return 0, UnitUnknown, false
	}

	type token struct {
		value float64
		unit  Unit
		ok    bool
	}
	tokens := make([]token, 0, len(matches))
	for _, m := range matches {
		v, ok := ParseNumber(m[1])
		tokens = append(tokens, token{value: v, unit: DetectUnit(m[2]), ok: ok})
	}

	for _, t := range tokens {
		if t.ok && t.unit == UnitPercent {
			return t.value, UnitPercent, true
		}
	}
	for _, t := range tokens {
		if t.ok && t.unit == UnitMgPerG {
			return t.value, UnitMgPerG, true
		}
	}
	for _, t := range tokens {
		if t.ok && t.unit == UnitUgPerG {
			return t.value, UnitUgPerG, true
		}
	}

	if percentColumn {
		for i := len(tokens) - 1; i >= 0; i-- {
			if tokens[i].ok {
				return tokens[i].value, UnitPercent, true
			}
		}
	}

	return 0, UnitUnknown, false
}

// Rank deduplicates observations into canonical records, applies the pinene
// co-elution correction, and returns records sorted by percent descending.
// Ties keep original scan order. Zero and negative percents are dropped.
func (e *TerpeneExtractor) Rank(text string) []CanonicalTerpeneRecord {
	observations := e.Observations(text)

	best := make(map[string]float64)
	firstSeen := make(map[string]int)
	for i, obs := range observations {
		percent, ok := ToPercent(obs.Value, obs.Unit)
		if !ok {
			continue
		}
		if obs.Unit == UnitPercent {
			percent = FixOverflow(percent)
		}

		if _, seen := best[obs.CanonicalName]; !seen {
			firstSeen[obs.CanonicalName] = i
			best[obs.CanonicalName] = percent
		} else if percent > best[obs.CanonicalName] {
			best[obs.CanonicalName] = percent
		}
	}

	// Generic "pinene" on reports that also list an isomer is frequently a
	// co-elution total double-counting the isomer readings; halve it.
	_, hasAlpha := best["alpha-pinene"]
	_, hasBeta := best["beta-pinene"]
	if generic, ok := best["pinene"]; ok && (hasAlpha || hasBeta) {
		best["pinene"] = generic / 2
	}

	records := make([]CanonicalTerpeneRecord, 0, len(best))
	for name, percent := range best {
		if percent <= 0 {
			continue
		}
		records = append(records, CanonicalTerpeneRecord{Name: name, Percent: percent})
	}

	sort.Slice(records, func(i, j int) bool {
		return firstSeen[records[i].Name] < firstSeen[records[j].Name]
	})
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Percent > records[j].Percent
	})

	return records
}

// Top returns the canonical names of the highest-percent terpenes, at most
// topN of them, highest first.
func (e *TerpeneExtractor) Top(text string) []string {
	records := e.Rank(text)
	if len(records) > e.topN {
		records = records[:e.topN]
	}

	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Name
	}
	return names
}

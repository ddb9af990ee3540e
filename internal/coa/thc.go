package coa

import (
	"regexp"
	"strings"
)

// decarbFactor is the molar-mass ratio converting THCA mass to THC mass
// after decarboxylation. Domain constant, not tunable.
const decarbFactor = 0.877

// Label proximity windows, in characters past the end of a label match.
// Wide enough for dot leaders in tabular layouts, narrow enough to stay
// document-local.
const (
	totalThcWindow  = 48
	componentWindow = 48
)

var (
	totalThcLabelRe = regexp.MustCompile(`(?i)total\s+(?:active\s+)?(?:potential\s+)?thc|thc\s+total`)
	thcaLabelRe     = regexp.MustCompile(`(?i)\bthc-?a\b|tetrahydrocannabinolic`)
	delta9LabelRe   = regexp.MustCompile(`(?i)delta[\s-]?9(?:[\s-]?thc)?|\bd9[\s-]?thc\b|Δ\s?9|δ\s?9`)
	bareThcLabelRe  = regexp.MustCompile(`(?i)\bthc\b`)

	percentValueRe = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*%`)
	mgPerGValueRe  = regexp.MustCompile(`(?i)(-?\d+(?:\.\d+)?)\s*mg\s*/\s*g`)
)

// thcStrategy is one step of the resolution chain. Steps are tried in order
// and the first success wins, which keeps the priority auditable and lets
// each step be tested in isolation.
type thcStrategy struct {
	name    string
	source  string
	resolve func(text string) (float64, bool)
}

// ThcResolver resolves the total THC percentage of a report via an ordered
// strategy chain: direct percent read, direct mg/g read, then the
// decarboxylation formula over independently located THCA and Delta-9
// components.
type ThcResolver struct {
	chain []thcStrategy
}

// NewThcResolver creates a resolver with the default strategy chain.
func NewThcResolver() *ThcResolver {
	return &ThcResolver{
		chain: []thcStrategy{
			{name: "total_thc_percent", source: ThcSourceDirect, resolve: totalThcPercent},
			{name: "total_thc_mg_per_g", source: ThcSourceDirect, resolve: totalThcMgPerG},
			{name: "thca_plus_delta9", source: ThcSourceComputed, resolve: computedTotalThc},
		},
	}
}

// Resolve runs the chain over normalized text. A document with no locatable
// THC data yields {nil, "none"}, never an error.
func (r *ThcResolver) Resolve(text string) ThcEstimate {
	for _, strategy := range r.chain {
		if v, ok := strategy.resolve(text); ok {
			v = Round2(v)
			return ThcEstimate{TotalPercent: &v, Source: strategy.source}
		}
	}
	return ThcEstimate{Source: ThcSourceNone}
}

// windowAfter returns the text window following a label match, cut at the
// next line break so a value is only accepted from the label's own row.
func windowAfter(text string, start, size int) string {
	end := start + size
	if end > len(text) {
		end = len(text)
	}
	w := text[start:end]
	if i := strings.IndexByte(w, '\n'); i >= 0 {
		w = w[:i]
	}
	return w
}

func totalThcPercent(text string) (float64, bool) {
	for _, loc := range totalThcLabelRe.FindAllStringIndex(text, -1) {
		w := windowAfter(text, loc[1], totalThcWindow)
		if m := percentValueRe.FindStringSubmatch(w); m != nil {
			if v, ok := ParseNumber(m[1]); ok {
				return FixOverflow(v), true
			}
		}
	}
	return 0, false
}

func totalThcMgPerG(text string) (float64, bool) {
	for _, loc := range totalThcLabelRe.FindAllStringIndex(text, -1) {
		w := windowAfter(text, loc[1], totalThcWindow)
		if m := mgPerGValueRe.FindStringSubmatch(w); m != nil {
			if v, ok := ParseNumber(m[1]); ok {
				return PercentFromMgPerG(v), true
			}
		}
	}
	return 0, false
}

// componentValue locates a cannabinoid component near any occurrence of its
// label, preferring percent readings over mg/g across all occurrences.
func componentValue(text string, label *regexp.Regexp) (float64, bool) {
	locs := label.FindAllStringIndex(text, -1)

	for _, loc := range locs {
		w := windowAfter(text, loc[1], componentWindow)
		if m := percentValueRe.FindStringSubmatch(w); m != nil {
			if v, ok := ParseNumber(m[1]); ok {
				return FixOverflow(v), true
			}
		}
	}
	for _, loc := range locs {
		w := windowAfter(text, loc[1], componentWindow)
		if m := mgPerGValueRe.FindStringSubmatch(w); m != nil {
			if v, ok := ParseNumber(m[1]); ok {
				return PercentFromMgPerG(v), true
			}
		}
	}
	return 0, false
}

// computedTotalThc applies the decarboxylation formula over whichever of the
// THCA and Delta-9 components can be located; a missing component counts as
// zero, but at least one must be found.
func computedTotalThc(text string) (float64, bool) {
	thca, foundThca := componentValue(text, thcaLabelRe)

	delta9, foundDelta9 := componentValue(text, delta9LabelRe)
	if !foundDelta9 {
		// Bare "THC" rows are a last resort for the Delta-9 component.
		delta9, foundDelta9 = componentValue(text, bareThcLabelRe)
	}

	if !foundThca && !foundDelta9 {
		return 0, false
	}
	return decarbFactor*thca + delta9, true
}

package coa

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Dictionary holds the canonical terpene vocabulary and the synonym table.
// It is immutable after construction, so a single instance is safe for
// unbounded concurrent reads. Per-run extensions are supplied to
// NewDictionaryWithSynonyms rather than mutated in.
type Dictionary struct {
	canonical map[string]struct{}
	synonyms  map[string]string
	nameRe    *regexp.Regexp
}

// canonicalTerpenes is the fixed vocabulary of recognized terpene keys.
// alpha-pinene and beta-pinene stay distinct from the generic pinene key
// because co-elution correction needs to see all three.
var canonicalTerpenes = []string{
	"myrcene",
	"limonene",
	"caryophyllene",
	"caryophyllene-oxide",
	"pinene",
	"alpha-pinene",
	"beta-pinene",
	"linalool",
	"humulene",
	"terpinolene",
	"terpinene",
	"ocimene",
	"bisabolol",
	"nerolidol",
	"terpineol",
	"camphene",
	"carene",
	"eucalyptol",
	"geraniol",
	"guaiol",
	"isopulegol",
	"borneol",
	"fenchol",
	"valencene",
	"sabinene",
	"phellandrene",
	"cymene",
	"farnesene",
	"citronellol",
}

// defaultSynonyms maps normalized source spellings to canonical keys.
// Keys are in the normalized hyphenated form produced by normalizeTerm.
var defaultSynonyms = map[string]string{
	"beta-myrcene":        "myrcene",
	"d-limonene":          "limonene",
	"beta-caryophyllene":  "caryophyllene",
	"b-caryophyllene":     "caryophyllene",
	"alpha-humulene":      "humulene",
	"a-pinene":            "alpha-pinene",
	"b-pinene":            "beta-pinene",
	"linalol":             "linalool",
	"beta-ocimene":        "ocimene",
	"cis-ocimene":         "ocimene",
	"trans-ocimene":       "ocimene",
	"alpha-bisabolol":     "bisabolol",
	"levomenol":           "bisabolol",
	"trans-nerolidol":     "nerolidol",
	"cis-nerolidol":       "nerolidol",
	"alpha-terpineol":     "terpineol",
	"3-carene":            "carene",
	"delta-3-carene":      "carene",
	"1,8-cineole":         "eucalyptol",
	"cineole":             "eucalyptol",
	"alpha-terpinene":     "terpinene",
	"gamma-terpinene":     "terpinene",
	"alpha-phellandrene":  "phellandrene",
	"beta-phellandrene":   "phellandrene",
	"p-cymene":            "cymene",
	"alpha-farnesene":     "farnesene",
	"beta-farnesene":      "farnesene",
	"fenchyl-alcohol":     "fenchol",
	"isoborneol":          "borneol",
	"caryophyllene-oxide": "caryophyllene-oxide",
}

var greekReplacer = strings.NewReplacer(
	"α", "alpha-",
	"β", "beta-",
	"ß", "beta-",
	"γ", "gamma-",
	"δ", "delta-",
	"Δ", "delta-",
)

var (
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	multiHyphenRe = regexp.MustCompile(`-{2,}`)
)

// normalizeTerm lower-cases a name token, spells out Greek prefixes and
// collapses separator noise. Applying it twice is a no-op.
func normalizeTerm(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = greekReplacer.Replace(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "- ", "-")
	s = strings.ReplaceAll(s, " -", "-")
	s = multiHyphenRe.ReplaceAllString(s, "-")
	return strings.Trim(s, " -")
}

// NewDictionary builds the default terpene dictionary.
func NewDictionary() *Dictionary {
	return NewDictionaryWithSynonyms(nil)
}

// NewDictionaryWithSynonyms builds a dictionary extended with additional
// synonym mappings (source spelling -> canonical key). The built-in table
// is never mutated; extensions shadow it in the returned copy.
func NewDictionaryWithSynonyms(extra map[string]string) *Dictionary {
	canonical := make(map[string]struct{}, len(canonicalTerpenes))
	for _, name := range canonicalTerpenes {
		canonical[name] = struct{}{}
	}

	synonyms := make(map[string]string, len(defaultSynonyms)+len(extra))
	for k, v := range defaultSynonyms {
		synonyms[k] = v
	}
	for k, v := range extra {
		synonyms[termKey(k)] = termKey(v)
	}

	return &Dictionary{
		canonical: canonical,
		synonyms:  synonyms,
		nameRe:    buildNameRegexp(canonical, synonyms),
	}
}

// LoadSynonyms reads a JSON synonym extension file of the form
// {"spelling": "canonical", ...}.
func LoadSynonyms(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read synonyms file: %w", err)
	}

	var synonyms map[string]string
	if err := json.Unmarshal(data, &synonyms); err != nil {
		return nil, fmt.Errorf("failed to parse synonyms file: %w", err)
	}

	return synonyms, nil
}

// termKey is the lookup form of a name: normalized, hyphen-joined.
func termKey(s string) string {
	return strings.ReplaceAll(normalizeTerm(s), " ", "-")
}

// buildNameRegexp compiles one alternation over every known spelling,
// longest first so compound names win over their suffixes, with hyphens and
// spaces interchangeable.
func buildNameRegexp(canonical map[string]struct{}, synonyms map[string]string) *regexp.Regexp {
	names := make([]string, 0, len(canonical)+len(synonyms))
	for name := range canonical {
		names = append(names, name)
	}
	for name := range synonyms {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	alts := make([]string, len(names))
	for i, name := range names {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(name), `\-`, `[-\s]`)
	}

	return regexp.MustCompile(`(?:^|[^a-z0-9])(` + strings.Join(alts, "|") + `)(?:$|[^a-z0-9])`)
}

// Canonicalize resolves a raw terpene name to its canonical key. Unknown
// names fall back to their normalized lower-cased form, kept as an opaque
// key so repeated mentions still group together. Canonicalize is
// idempotent: applying it to its own output is a no-op.
func (d *Dictionary) Canonicalize(raw string) string {
	key := termKey(raw)
	if canonical, ok := d.synonyms[key]; ok {
		return canonical
	}
	return key
}

// IsKnown reports whether name is one of the canonical terpene keys.
func (d *Dictionary) IsKnown(name string) bool {
	_, ok := d.canonical[termKey(name)]
	return ok
}

// MatchName scans a line for the first known terpene spelling (canonical
// name or synonym, Greek or spelled-out prefix, hyphen or space separated).
// The returned string is the matched spelling as found after normalization.
func (d *Dictionary) MatchName(line string) (string, bool) {
	normalized := normalizeTerm(line)
	m := d.nameRe.FindStringSubmatch(normalized)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Size returns the number of canonical terpene keys.
func (d *Dictionary) Size() int {
	return len(d.canonical)
}

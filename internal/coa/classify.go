package coa

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	lineageRe = regexp.MustCompile(`(?i)\b(sativa|indica|hybrid)\b`)
	typeRowRe = regexp.MustCompile(`(?im)^\s*(?:product\s+)?type\s*:\s*(.+)$`)

	// SKU-style product codes embed lineage as a hyphen-delimited single
	// letter: "WC-1234-H-05".
	skuLineageRe = regexp.MustCompile(`-([IHS])-`)

	// Ordered by label reliability; the first label present wins.
	strainLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?im)^\s*strain\s*:\s*(.+)$`),
		regexp.MustCompile(`(?im)^\s*cultivar\(?s?\)?\s*:\s*(.+)$`),
		regexp.MustCompile(`(?im)^\s*sample\s+alias\s*:\s*(.+)$`),
		regexp.MustCompile(`(?im)^\s*product\s+name\s*:\s*(.+)$`),
		regexp.MustCompile(`(?im)^\s*item\s*:\s*(.+)$`),
	}
)

var skuLineage = map[string]string{
	"I": "Indica",
	"H": "Hybrid",
	"S": "Sativa",
}

// Classifier infers product lineage and strain name from report text.
type Classifier struct {
	titler cases.Caser
}

// NewClassifier creates a classifier.
func NewClassifier() *Classifier {
	return &Classifier{titler: cases.Title(language.English)}
}

// ClassifyType resolves the product type. Resolution order: a bare lineage
// keyword anywhere in the text, a labeled "Type:" row (scanned for the same
// keywords, else returned verbatim to cover product-form labels like
// "Pre-Roll"), then a lineage letter in a SKU-style code. An empty string
// means unclassified.
func (c *Classifier) ClassifyType(text string) string {
	if m := lineageRe.FindString(text); m != "" {
		return c.titler.String(strings.ToLower(m))
	}

	if m := typeRowRe.FindStringSubmatch(text); m != nil {
		value := collapseSpaces(m[1])
		if k := lineageRe.FindString(value); k != "" {
			return c.titler.String(strings.ToLower(k))
		}
		if value != "" {
			return value
		}
	}

	if m := skuLineageRe.FindStringSubmatch(text); m != nil {
		return skuLineage[m[1]]
	}

	return ""
}

// ExtractStrainName resolves the product/strain name from an ordered list of
// label patterns. The first label found wins; the value is trimmed and
// whitespace-collapsed. An empty string means no label matched.
func (c *Classifier) ExtractStrainName(text string) string {
	for _, re := range strainLabelRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if name := collapseSpaces(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// StrainNameFromLocator derives a human-readable name guess from the last
// path segment of a document's source locator (URL or file path). Fallback
// for documents whose text carries no name label at all.
func (c *Classifier) StrainNameFromLocator(locator string) string {
	segment := locator
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		segment = u.Path
	}

	segment = path.Base(strings.ReplaceAll(segment, "\\", "/"))
	if i := strings.IndexAny(segment, "?#"); i >= 0 {
		segment = segment[:i]
	}
	segment = strings.TrimSuffix(segment, path.Ext(segment))

	segment = strings.ReplaceAll(segment, "-", " ")
	segment = strings.ReplaceAll(segment, "_", " ")
	segment = collapseSpaces(segment)
	if segment == "" || segment == "." || segment == "/" {
		return ""
	}

	return c.titler.String(strings.ToLower(segment))
}

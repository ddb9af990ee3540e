package coa

// Unit identifies the measurement unit attached to a concentration token.
type Unit string

const (
	UnitPercent Unit = "%"
	UnitMgPerG  Unit = "mg/g"
	UnitUgPerG  Unit = "ug/g"
	UnitUnknown Unit = ""
)

// TerpeneObservation is a single candidate sighting of a terpene reading on
// one report line. Several observations may resolve to the same canonical
// name when a lab restates an analyte across table sections.
type TerpeneObservation struct {
	RawName       string  `json:"raw_name"`
	CanonicalName string  `json:"canonical_name"`
	Value         float64 `json:"value"`
	Unit          Unit    `json:"unit"`
	Line          int     `json:"line"`
}

// CanonicalTerpeneRecord is the deduplicated, percent-normalized reading for
// one canonical terpene. At most one record exists per canonical name; it
// carries the maximum percent observed for that name.
type CanonicalTerpeneRecord struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// Source attributions for a ThcEstimate.
const (
	ThcSourceDirect   = "direct"
	ThcSourceComputed = "computed"
	ThcSourceNone     = "none"
)

// ThcEstimate is the resolved total THC percentage. TotalPercent is nil when
// no reading or component could be located. When Source is "computed" the
// value is round(0.877*THCA + Delta9, 2).
type ThcEstimate struct {
	TotalPercent *float64 `json:"total_percent"`
	Source       string   `json:"source"`
}

// ExtractionResult is the assembled output for one document. It is built
// once per extraction call and never mutated afterwards. Empty strings mean
// the field could not be resolved.
type ExtractionResult struct {
	StrainName      string      `json:"strain_name,omitempty"`
	Type            string      `json:"type,omitempty"`
	DominantTerpene string      `json:"dominant_terpene,omitempty"`
	OtherTerpenes   []string    `json:"other_terpenes"`
	Thc             ThcEstimate `json:"thc"`
}

// TerpeneReport is the terpene sub-result exposed to debugging callers. It
// carries the full ranking rather than just the top names, whether the
// document declared a percent-column context, and a short text preview.
type TerpeneReport struct {
	Records       []CanonicalTerpeneRecord `json:"records"`
	PercentColumn bool                     `json:"percent_column"`
	Preview       string                   `json:"preview"`
}

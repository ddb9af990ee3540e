package coa

// Extractor composes the field extractors over a shared read-only
// dictionary. Extraction is a pure, synchronous transform of one text blob;
// an Extractor holds no cross-call state and may be shared by any number of
// goroutines.
type Extractor struct {
	dict     *Dictionary
	terpenes *TerpeneExtractor
	thc      *ThcResolver
	classify *Classifier
}

// ExtractorOption customizes an Extractor at construction time.
type ExtractorOption func(*Extractor)

// WithDictionary replaces the default terpene dictionary, e.g. one extended
// with per-run synonym configuration.
func WithDictionary(dict *Dictionary) ExtractorOption {
	return func(e *Extractor) {
		e.dict = dict
	}
}

// WithTopTerpenes overrides how many ranked terpene names are reported
// (dominant plus others).
func WithTopTerpenes(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.terpenes.topN = n
		}
	}
}

// NewExtractor creates an extraction engine with the default dictionary and
// strategy chains.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		dict:     NewDictionary(),
		thc:      NewThcResolver(),
		classify: NewClassifier(),
	}
	e.terpenes = NewTerpeneExtractor(e.dict)

	for _, opt := range opts {
		opt(e)
	}
	// Options may have swapped the dictionary after the terpene extractor
	// was built; keep them consistent.
	e.terpenes.dict = e.dict

	return e
}

// Extract runs all field extractors over one document's text and assembles
// the result. Fields that cannot be resolved degrade individually; a blank
// document yields a fully-empty result, never an error.
func (e *Extractor) Extract(text string) *ExtractionResult {
	text = NormalizeText(text)

	result := &ExtractionResult{
		OtherTerpenes: []string{},
		Thc:           e.thc.Resolve(text),
	}

	top := e.terpenes.Top(text)
	if len(top) > 0 {
		result.DominantTerpene = top[0]
		result.OtherTerpenes = top[1:]
	}

	result.Type = e.classify.ClassifyType(text)
	result.StrainName = e.classify.ExtractStrainName(text)

	return result
}

// ExtractFromSource is Extract plus the locator-derived strain-name fallback
// for documents whose text carries no name label.
func (e *Extractor) ExtractFromSource(text, locator string) *ExtractionResult {
	result := e.Extract(text)
	if result.StrainName == "" && locator != "" {
		result.StrainName = e.classify.StrainNameFromLocator(locator)
	}
	return result
}

// Terpenes exposes the terpene sub-result in isolation for debugging
// callers: full ranking, percent-column context, and a text preview.
func (e *Extractor) Terpenes(text string) *TerpeneReport {
	text = NormalizeText(text)

	report := &TerpeneReport{
		Records:       e.terpenes.Rank(text),
		PercentColumn: e.terpenes.PercentColumn(text),
	}
	if report.Records == nil {
		report.Records = []CanonicalTerpeneRecord{}
	}

	const previewLen = 200
	if len(text) > previewLen {
		report.Preview = text[:previewLen]
	} else {
		report.Preview = text
	}

	return report
}

// Thc exposes the THC sub-result in isolation.
func (e *Extractor) Thc(text string) ThcEstimate {
	return e.thc.Resolve(NormalizeText(text))
}

// ClassifyType exposes the type sub-result in isolation.
func (e *Extractor) ClassifyType(text string) string {
	return e.classify.ClassifyType(NormalizeText(text))
}

// StrainName exposes the strain-name sub-result in isolation.
func (e *Extractor) StrainName(text string) string {
	return e.classify.ExtractStrainName(NormalizeText(text))
}

// Dictionary returns the engine's dictionary.
func (e *Extractor) Dictionary() *Dictionary {
	return e.dict
}

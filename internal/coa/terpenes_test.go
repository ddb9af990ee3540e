package coa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTerpeneExtractor() *TerpeneExtractor {
	return NewTerpeneExtractor(NewDictionary())
}

func TestObservationsBasicLines(t *testing.T) {
	e := newTestTerpeneExtractor()

	text := NormalizeText(`Terpene Profile
Myrcene 1.2 %
Limonene 8.0 mg/g
β-Caryophyllene 4400 µg/g
Moisture 11.2 %
`)
	obs := e.Observations(text)
	require.Len(t, obs, 3)

	assert.Equal(t, "myrcene", obs[0].CanonicalName)
	assert.Equal(t, UnitPercent, obs[0].Unit)
	assert.InDelta(t, 1.2, obs[0].Value, 1e-9)

	assert.Equal(t, "limonene", obs[1].CanonicalName)
	assert.Equal(t, UnitMgPerG, obs[1].Unit)

	assert.Equal(t, "caryophyllene", obs[2].CanonicalName)
	assert.Equal(t, UnitUgPerG, obs[2].Unit)
}

func TestPickMeasurementPriority(t *testing.T) {
	tests := []struct {
		name          string
		line          string
		percentColumn bool
		wantValue     float64
		wantUnit      Unit
		wantOK        bool
	}{
		{
			name:      "percent beats mg/g",
			line:      "Myrcene 12.0 mg/g 1.2 %",
			wantValue: 1.2,
			wantUnit:  UnitPercent,
			wantOK:    true,
		},
		{
			name:      "mg/g beats ug/g",
			line:      "Myrcene 12000 µg/g 12.0 mg/g",
			wantValue: 12.0,
			wantUnit:  UnitMgPerG,
			wantOK:    true,
		},
		{
			name:      "ug/g stands alone",
			line:      "Myrcene 12000 ug/g",
			wantValue: 12000,
			wantUnit:  UnitUgPerG,
			wantOK:    true,
		},
		{
			name:   "bare number without percent context is dropped",
			line:   "Myrcene 1.2",
			wantOK: false,
		},
		{
			name:          "bare number with percent context uses last token",
			line:          "Myrcene 443 1.2",
			percentColumn: true,
			wantValue:     1.2,
			wantUnit:      UnitPercent,
			wantOK:        true,
		},
		{
			name:   "no numbers",
			line:   "Myrcene not detected",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, unit, ok := pickMeasurement(tt.line, tt.percentColumn)
			if ok != tt.wantOK {
				t.Fatalf("pickMeasurement ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if value != tt.wantValue || unit != tt.wantUnit {
				t.Errorf("pickMeasurement = (%v, %q), want (%v, %q)", value, unit, tt.wantValue, tt.wantUnit)
			}
		})
	}
}

func TestRankDeduplicatesByMaxPercent(t *testing.T) {
	e := newTestTerpeneExtractor()

	// The same analyte restated in two table sections keeps the maximum.
	text := "Myrcene 3.0 %\nOther section\nbeta-Myrcene 5.0 %\n"
	records := e.Rank(text)

	require.Len(t, records, 1)
	assert.Equal(t, "myrcene", records[0].Name)
	assert.InDelta(t, 5.0, records[0].Percent, 1e-9)
}

func TestRankPineneCoElutionCorrection(t *testing.T) {
	e := newTestTerpeneExtractor()

	text := "alpha-Pinene 2.0 %\nPinene 4.0 %\nMyrcene 3.0 %\n"
	records := e.Rank(text)
	require.Len(t, records, 3)

	byName := map[string]float64{}
	for _, r := range records {
		byName[r.Name] = r.Percent
	}
	assert.InDelta(t, 2.0, byName["pinene"], 1e-9)
	assert.InDelta(t, 2.0, byName["alpha-pinene"], 1e-9)

	// Ranking reorders after the correction: myrcene now leads.
	assert.Equal(t, "myrcene", records[0].Name)
}

func TestRankExcludesNonPositive(t *testing.T) {
	e := newTestTerpeneExtractor()

	text := "Myrcene 0.0 %\nLimonene -0.5 %\nLinalool 0.3 %\n"
	records := e.Rank(text)

	require.Len(t, records, 1)
	assert.Equal(t, "linalool", records[0].Name)
}

func TestRankStableTieOrder(t *testing.T) {
	e := newTestTerpeneExtractor()

	text := "Limonene 1.0 %\nMyrcene 1.0 %\nLinalool 1.0 %\n"
	records := e.Rank(text)

	require.Len(t, records, 3)
	assert.Equal(t, "limonene", records[0].Name)
	assert.Equal(t, "myrcene", records[1].Name)
	assert.Equal(t, "linalool", records[2].Name)
}

func TestTopReturnsAtMostThree(t *testing.T) {
	e := newTestTerpeneExtractor()

	text := `Myrcene 1.2 %
Limonene 0.8 %
Caryophyllene 0.4 %
Linalool 0.3 %
Humulene 0.2 %
`
	top := e.Top(text)
	assert.Equal(t, []string{"myrcene", "limonene", "caryophyllene"}, top)
}

func TestTopUnitsNormalizedBeforeRanking(t *testing.T) {
	e := newTestTerpeneExtractor()

	// 15 mg/g = 1.5% outranks 1.2%.
	text := "Myrcene 1.2 %\nLimonene 15.0 mg/g\n"
	top := e.Top(text)

	require.Len(t, top, 2)
	assert.Equal(t, "limonene", top[0])
}

func TestPercentColumnContext(t *testing.T) {
	e := newTestTerpeneExtractor()

	text := `Terpenes  Result (%)
Myrcene  1.2
Limonene  0.8
`
	top := e.Top(NormalizeText(text))
	require.NotEmpty(t, top)
	assert.Equal(t, "myrcene", top[0])
}

func TestObservationsEmptyText(t *testing.T) {
	e := newTestTerpeneExtractor()

	assert.Empty(t, e.Observations(""))
	assert.Empty(t, e.Rank(""))
	assert.Empty(t, e.Top(""))
}

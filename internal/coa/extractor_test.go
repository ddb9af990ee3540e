package coa

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEndToEnd(t *testing.T) {
	e := NewExtractor()

	text := `Certificate of Analysis
Strain: Wedding Cake
Type: Hybrid
Terpene Profile
Myrcene 1.2%
Limonene 0.8%
Caryophyllene 0.4%
Cannabinoid Profile
Total THC: 23.0%
`
	result := e.Extract(text)

	assert.Equal(t, "Wedding Cake", result.StrainName)
	assert.Equal(t, "Hybrid", result.Type)
	assert.Equal(t, "myrcene", result.DominantTerpene)
	assert.Equal(t, []string{"limonene", "caryophyllene"}, result.OtherTerpenes)
	require.Equal(t, ThcSourceDirect, result.Thc.Source)
	require.NotNil(t, result.Thc.TotalPercent)
	assert.InDelta(t, 23.0, *result.Thc.TotalPercent, 1e-9)
}

func TestExtractEmptyText(t *testing.T) {
	e := NewExtractor()

	result := e.Extract("")

	assert.Empty(t, result.StrainName)
	assert.Empty(t, result.Type)
	assert.Empty(t, result.DominantTerpene)
	assert.Empty(t, result.OtherTerpenes)
	assert.NotNil(t, result.OtherTerpenes)
	assert.Nil(t, result.Thc.TotalPercent)
	assert.Equal(t, ThcSourceNone, result.Thc.Source)
}

func TestExtractDegradesPerField(t *testing.T) {
	e := NewExtractor()

	// Only terpene data present; the other fields stay empty without
	// failing the extraction.
	result := e.Extract("Myrcene 1.2%\n")

	assert.Equal(t, "myrcene", result.DominantTerpene)
	assert.Empty(t, result.StrainName)
	assert.Empty(t, result.Type)
	assert.Equal(t, ThcSourceNone, result.Thc.Source)
}

func TestExtractFromSourceLocatorFallback(t *testing.T) {
	e := NewExtractor()

	result := e.ExtractFromSource("Myrcene 1.2%\n", "https://lab.example.com/coa/wedding-cake.pdf")
	assert.Equal(t, "Wedding Cake", result.StrainName)

	// A labeled name wins over the locator.
	result = e.ExtractFromSource("Strain: Gelato\n", "https://lab.example.com/coa/wedding-cake.pdf")
	assert.Equal(t, "Gelato", result.StrainName)
}

func TestExtractWithCustomDictionary(t *testing.T) {
	dict := NewDictionaryWithSynonyms(map[string]string{"house blend terp": "myrcene"})
	e := NewExtractor(WithDictionary(dict))

	result := e.Extract("House Blend Terp 2.0%\n")
	assert.Equal(t, "myrcene", result.DominantTerpene)
}

func TestTerpenesDebugReport(t *testing.T) {
	e := NewExtractor()

	report := e.Terpenes("Terpenes Result (%)\nMyrcene 1.2\n")
	require.Len(t, report.Records, 1)
	assert.True(t, report.PercentColumn)
	assert.NotEmpty(t, report.Preview)

	empty := e.Terpenes("")
	assert.NotNil(t, empty.Records)
	assert.Empty(t, empty.Records)
}

func TestExtractorConcurrentUse(t *testing.T) {
	e := NewExtractor()
	text := "Strain: Runtz\nType: Hybrid\nMyrcene 1.2%\nTotal THC: 21.0%\n"

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				result := e.Extract(text)
				if result.DominantTerpene != "myrcene" {
					t.Errorf("unexpected dominant terpene %q", result.DominantTerpene)
					return
				}
			}
		}()
	}
	wg.Wait()
}

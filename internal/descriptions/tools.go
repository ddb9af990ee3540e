package descriptions

// Comprehensive tool descriptions with practical examples and use cases

const (
	// Extraction Tools
	CoaExtractFileDescription = `Extract structured fields from a Certificate of Analysis document.

**When to use:** You have a COA file (PDF, HTML, or plain text) or URL and want the strain name, product type, dominant terpene, and total THC in one call.

**Why it's useful:** Lab reports vary wildly in layout. This tool normalizes the text, repairs split decimals, canonicalizes terpene names, and resolves total THC with a documented strategy chain so you get comparable fields across labs.

**Examples:**
• Process a lab PDF: "Extract fields from wedding-cake-coa.pdf"
• Process a hosted report: "Extract fields from https://lab.example.com/reports/12345"
• Fill a product catalog: "Extract strain, type, and THC from every COA in /reports/"

**Common workflows:**
1. Catalog Enrichment: Extract fields → Review result → Store in product database
2. Batch Processing: Search directory → Extract each file → Compare terpene profiles
3. QA Review: Extract fields → Check thc_source → Flag computed or missing values

**Best practices:** Validate the file first with coa_validate_file; a null field means the document did not contain that information, not a tool failure.`

	CoaExtractTextDescription = `Extract structured fields from raw COA text you already have.

**When to use:** The report text came from another system (OCR output, a scraped page, an email body) and you want the same extraction without going through a file.

**Why it's useful:** Runs the identical normalization and extraction pipeline as coa_extract_file, so results are comparable regardless of how the text was obtained.

**Examples:**
• OCR pipeline: "Extract fields from this OCR output of a scanned COA"
• Scraped content: "Extract strain and THC from this pasted lab page"

**Common workflows:**
1. OCR Integration: OCR scan → Extract fields from text → Store results
2. Ad-hoc Analysis: Paste report text → Extract fields → Inspect values

**Best practices:** Pass an optional source locator so strain-name fallback from the filename still works.`

	CoaExtractTerpenesDescription = `Extract and rank the terpene profile from a COA document or text.

**When to use:** You only care about terpenes: which compounds were detected, their percentages, and which one dominates.

**Why it's useful:** Handles Greek-letter and spelled-out prefixes, synonym variants, mg/g and µg/g unit conversion, duplicate rows, and co-eluting pinene reporting, returning one clean percent per canonical terpene.

**Examples:**
• Flavor profiling: "Get the terpene profile from gelato-coa.pdf"
• Debugging: "Show every terpene row found in this report and the percent column detection"

**Common workflows:**
1. Profile Comparison: Extract terpenes from several COAs → Compare dominant terpenes
2. Extraction Debugging: Inspect ranked records → Verify unit conversion → Adjust synonyms

**Best practices:** Values are percent by mass; a terpene missing from the output was below detection or absent from the report.`

	CoaExtractThcDescription = `Resolve total THC percent from a COA document or text.

**When to use:** You need the total THC number and want to know how it was obtained.

**Why it's useful:** Prefers the lab's own "Total THC" line (percent, then mg/g), falls back to computing THCA × 0.877 + Δ9-THC from component rows, and labels the result with its source so downstream consumers can weigh trust accordingly.

**Examples:**
• Compliance check: "Get total THC from this COA and tell me if it was printed or computed"
• Data repair: "Resolve THC for reports where the total line is missing"

**Common workflows:**
1. Menu Data: Resolve THC → Display percent with source annotation
2. Auditing: Compare direct vs computed values across a lab's reports

**Best practices:** A null value with source "none" means the report had neither a total line nor usable component rows.`

	CoaClassifyProductDescription = `Classify the product type and strain name from a COA document or text.

**When to use:** You need indica/sativa/hybrid classification or the strain name, independent of cannabinoid data.

**Why it's useful:** Checks bare type keywords, labeled type rows, and SKU lineage codes in priority order, and resolves the strain from labeled rows with a filename fallback, so sparse reports still classify.

**Examples:**
• Menu categorization: "Classify wedding-cake-coa.pdf as indica, sativa, or hybrid"
• Name recovery: "Get the strain name from a report that only has a product SKU"

**Common workflows:**
1. Catalog Tagging: Classify each COA → Tag products by type
2. Name Normalization: Extract strain names → Deduplicate across labs

**Best practices:** An empty type means the report carried no recognizable classification signal; pass the source locator to enable filename fallback.`

	// Acquisition and Discovery Tools
	CoaValidateFileDescription = `Verify a COA file is readable before extraction.

**When to use:** Before processing unknown files, especially in automated or batch workflows.

**Why it's useful:** Catches missing, empty, oversized, unsupported, and structurally broken PDF files early, with the failure reason in the result instead of an error.

**Examples:**
• Batch safety: "Validate every file in /reports/ before bulk extraction"
• Upload check: "Confirm the uploaded COA is a readable PDF"

**Common workflows:**
1. Automated Pipeline: Validate → Extract if valid → Log failures
2. Quality Control: Validate uploads → Reject bad files with the reported reason

**Best practices:** Run first in automated workflows; PDF page count in the result helps estimate processing cost.`

	CoaSearchDirectoryDescription = `Discover COA report files in a directory with optional fuzzy search.

**When to use:** You need to find reports by partial name or build an inventory of a report directory.

**Why it's useful:** Walks subdirectories, filters to supported report types, and matches partial or abbreviated names so "wdngcake" still finds "wedding-cake.pdf".

**Examples:**
• Find a report: "Search /reports/ for anything matching 'gelato'"
• Inventory: "List every COA file under /archive/"

**Common workflows:**
1. Batch Processing: Search directory → Extract each match → Aggregate results
2. Discovery: List reports → Pick candidates → Extract selected files

**Best practices:** Leave the directory empty to use the server's configured report directory.`

	CoaListRecordsDescription = `List previously stored extraction records.

**When to use:** Reviewing what has already been extracted, or comparing results across runs without re-reading the source documents.

**Why it's useful:** Records persist per source locator, so repeated extractions of the same report update in place and the history stays deduplicated.

**Examples:**
• Review: "Show the last 20 extraction records"
• Audit: "List stored records to find reports with computed THC"

**Common workflows:**
1. Batch Review: Run batch extraction → List records → Spot-check results
2. Incremental Processing: List records → Skip already-extracted sources

**Best practices:** Requires the server to be started with a store path; without persistence this tool reports that storage is disabled.`

	// Utility Tools
	CoaServerInfoDescription = `Get server status, configuration, available tools, and report directory contents.

**When to use:** Starting a session, troubleshooting missing files, or discovering capabilities.

**Why it's useful:** One call shows the configured report directory, size limits, persistence status, and every available tool with usage guidance.

**Examples:**
• Session start: "Check the server configuration before batch work"
• Debugging: "Verify which directory the server is reading from"

**Common workflows:**
1. Session Startup: Check info → Verify directory → Plan extraction approach
2. Debugging: Review configuration → Confirm file visibility → Re-run extraction

**Best practices:** Run at the start of sessions; the directory listing is a quick sanity check that reports are where you expect.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"coa_extract_file":     CoaExtractFileDescription,
	"coa_extract_text":     CoaExtractTextDescription,
	"coa_extract_terpenes": CoaExtractTerpenesDescription,
	"coa_extract_thc":      CoaExtractThcDescription,
	"coa_classify_product": CoaClassifyProductDescription,
	"coa_validate_file":    CoaValidateFileDescription,
	"coa_search_directory": CoaSearchDirectoryDescription,
	"coa_list_records":     CoaListRecordsDescription,
	"coa_server_info":      CoaServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}

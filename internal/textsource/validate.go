package textsource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// reportExtensions are the file types accepted as COA documents.
var reportExtensions = map[string]bool{
	".pdf":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
}

// Validator checks whether a file is a readable COA document before the
// heavier extraction path runs.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the given file size cap.
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile validates a report file. Validation failures come back in
// the result, not as an error.
func (v *Validator) ValidateFile(path string) (*ValidateResult, error) {
	result := &ValidateResult{Path: path}

	pages, err := v.validateReportFile(path)
	if err != nil {
		result.Message = err.Error()
		return result, nil //nolint:nilerr // validation outcome, not a processing error
	}

	result.Valid = true
	result.Pages = pages
	return result, nil
}

func (v *Validator) validateReportFile(path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return 0, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return 0, fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return 0, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !reportExtensions[ext] {
		return 0, fmt.Errorf("unsupported report type: %s", path)
	}
	if fileInfo.Size() == 0 {
		return 0, fmt.Errorf("file is empty: %s", path)
	}
	if fileInfo.Size() > v.maxFileSize {
		return 0, fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)
	}

	if ext != ".pdf" {
		return 0, nil
	}

	// Structural validation catches truncated and mislabeled PDFs that the
	// text extractor would choke on later.
	if err := api.ValidateFile(path, nil); err != nil {
		return 0, fmt.Errorf("invalid PDF file: %w", err)
	}
	pages, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("cannot determine page count: %w", err)
	}
	return pages, nil
}

// IsValidReport performs a quick validity check.
func (v *Validator) IsValidReport(path string) bool {
	_, err := v.validateReportFile(path)
	return err == nil
}

// ValidateFileInfo checks a file against the basic constraints without
// opening it, for use during directory walks.
func (v *Validator) ValidateFileInfo(path string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if !reportExtensions[strings.ToLower(filepath.Ext(path))] {
		return fmt.Errorf("unsupported report type: %s", path)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", path)
	}
	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), v.maxFileSize)
	}
	return nil
}

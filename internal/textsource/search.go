package textsource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Search discovers COA report files on disk.
type Search struct {
	validator *Validator
}

// NewSearch creates a search handler.
func NewSearch(maxFileSize int64) *Search {
	return &Search{validator: NewValidator(maxFileSize)}
}

// SearchDirectory walks a directory for report files, optionally filtered
// by a fuzzy filename query.
func (s *Search) SearchDirectory(directory, query string) (*SearchResult, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}

	absDirectory, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))

	var files []FileInfo
	err = filepath.Walk(absDirectory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // keep walking past unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		if err := s.validator.ValidateFileInfo(path, info); err != nil {
			return nil //nolint:nilerr // skip invalid files, keep walking
		}
		if query != "" && !matchesQuery(info.Name(), query) {
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	return &SearchResult{
		Files:       files,
		TotalCount:  len(files),
		Directory:   absDirectory,
		SearchQuery: query,
	}, nil
}

// FindReports lists every report file under directory.
func (s *Search) FindReports(directory string) ([]FileInfo, error) {
	result, err := s.SearchDirectory(directory, "")
	if err != nil {
		return nil, err
	}
	return result.Files, nil
}

// matchesQuery does substring matching first, then falls back to a
// character subsequence match so "wdngcake" still finds
// "wedding-cake.pdf".
func matchesQuery(name, query string) bool {
	name = strings.ToLower(name)
	if strings.Contains(name, query) {
		return true
	}

	i := 0
	for _, c := range name {
		if i < len(query) && byte(c) == query[i] {
			i++
		}
	}
	return i == len(query)
}

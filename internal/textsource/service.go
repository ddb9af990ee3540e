package textsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Service turns a source locator — a local report file or an HTTP(S) URL —
// into the plain text the extraction engine consumes. Local file access is
// confined to the configured report directory.
type Service struct {
	reader    *Reader
	fetcher   *Fetcher
	validator *Validator
	search    *Search
	guard     *PathGuard
}

// NewService wires the acquisition components around one report directory.
func NewService(configuredDirectory string, maxFileSize int64, fetchTimeout time.Duration) (*Service, error) {
	guard, err := NewPathGuard(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path guard: %w", err)
	}

	reader := NewReader(maxFileSize)
	return &Service{
		reader:    reader,
		fetcher:   NewFetcher(reader, fetchTimeout),
		validator: NewValidator(maxFileSize),
		search:    NewSearch(maxFileSize),
		guard:     guard,
	}, nil
}

// Resolve acquires the text of one document identified by a locator.
func (s *Service) Resolve(ctx context.Context, source string) (*Document, error) {
	if source == "" {
		return nil, fmt.Errorf("source cannot be empty")
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return s.fetcher.Fetch(ctx, source)
	}
	return s.resolveFile(source)
}

func (s *Service) resolveFile(path string) (*Document, error) {
	if err := s.guard.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	doc := &Document{Source: path}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		doc.Kind = "pdf"
		text, err := s.reader.ReadPDF(path)
		if err != nil {
			return nil, err
		}
		doc.Text = text
	case ".html", ".htm":
		doc.Kind = "html"
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open file: %w", err)
		}
		defer f.Close()
		text, err := TextFromHTML(f)
		if err != nil {
			return nil, err
		}
		doc.Text = text
	default:
		doc.Kind = "text"
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("cannot read file: %w", err)
		}
		if int64(len(data)) > s.reader.maxFileSize {
			return nil, fmt.Errorf("file too large: %d bytes (max: %d bytes)", len(data), s.reader.maxFileSize)
		}
		doc.Text = string(data)
	}

	return doc, nil
}

// ValidateFile checks a report file, confined to the configured directory.
func (s *Service) ValidateFile(path string) (*ValidateResult, error) {
	if err := s.guard.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(path)
}

// SearchDirectory discovers report files, defaulting to the configured
// directory.
func (s *Service) SearchDirectory(directory, query string) (*SearchResult, error) {
	if directory == "" {
		directory = s.guard.ConfiguredDirectory()
	}
	if err := s.guard.ValidatePath(directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.search.SearchDirectory(directory, query)
}

// ConfiguredDirectory returns the report directory the service is bound to.
func (s *Service) ConfiguredDirectory() string {
	return s.guard.ConfiguredDirectory()
}

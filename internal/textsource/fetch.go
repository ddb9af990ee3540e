package textsource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultFetchTimeout = 30 * time.Second

// Fetcher downloads remote COA documents over HTTP. Redirects are followed
// by the underlying client; the response body is size-capped before any
// parsing happens.
type Fetcher struct {
	client  *http.Client
	reader  *Reader
	maxSize int64
}

// NewFetcher creates a fetcher sharing the reader's size limits.
func NewFetcher(reader *Reader, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		reader:  reader,
		maxSize: reader.maxFileSize,
	}
}

// Fetch downloads a document and converts it to text. The document kind is
// decided by the Content-Type header, falling back to content sniffing.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > f.maxSize {
		return nil, fmt.Errorf("document too large: over %d bytes", f.maxSize)
	}

	kind := documentKind(resp.Header.Get("Content-Type"), url, data)

	doc := &Document{Source: url, Kind: kind}
	switch kind {
	case "pdf":
		doc.Text, err = f.reader.ReadPDFBytes(data)
		if err != nil {
			return nil, err
		}
	case "html":
		doc.Text, err = TextFromHTML(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	default:
		doc.Text = string(data)
	}

	return doc, nil
}

// documentKind classifies a downloaded payload as pdf, html or plain text.
func documentKind(contentType, url string, data []byte) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "application/pdf"):
		return "pdf"
	case strings.Contains(ct, "text/html"):
		return "html"
	}

	lower := strings.ToLower(url)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "pdf"
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return "html"
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return "pdf"
	}
	head := strings.ToLower(string(data[:min(len(data), 256)]))
	if strings.Contains(head, "<html") || strings.Contains(head, "<!doctype html") {
		return "html"
	}

	return "text"
}

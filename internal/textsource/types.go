package textsource

// FileInfo describes one discovered report file.
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// SearchResult is the outcome of a directory discovery request.
type SearchResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// ValidateResult reports whether a file looks like a readable COA document.
type ValidateResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}

// Document is acquired text plus where it came from.
type Document struct {
	Source string `json:"source"`
	Kind   string `json:"kind"` // "pdf", "html" or "text"
	Text   string `json:"text"`
}

package textsource

import (
	"os"
	"path/filepath"
	"testing"
)

func writeReportFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestSearchDirectory(t *testing.T) {
	dir := t.TempDir()
	writeReportFile(t, dir, "wedding-cake.txt", "Strain: Wedding Cake")
	writeReportFile(t, dir, "sour-diesel.html", "<p>Sour Diesel</p>")
	writeReportFile(t, dir, "notes.md", "not a report")
	writeReportFile(t, dir, "empty.txt", "")

	sub := filepath.Join(dir, "archive")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeReportFile(t, sub, "gelato.txt", "Strain: Gelato")

	search := NewSearch(1 << 20)

	result, err := search.SearchDirectory(dir, "")
	if err != nil {
		t.Fatalf("SearchDirectory failed: %v", err)
	}
	if result.TotalCount != 3 {
		t.Errorf("expected 3 report files, got %d: %+v", result.TotalCount, result.Files)
	}
	for _, f := range result.Files {
		if f.Name == "notes.md" || f.Name == "empty.txt" {
			t.Errorf("invalid file %s should have been skipped", f.Name)
		}
	}
}

func TestSearchDirectoryQuery(t *testing.T) {
	dir := t.TempDir()
	writeReportFile(t, dir, "wedding-cake.txt", "x")
	writeReportFile(t, dir, "sour-diesel.txt", "x")

	search := NewSearch(1 << 20)

	tests := []struct {
		query string
		want  string
		count int
	}{
		{"wedding", "wedding-cake.txt", 1},
		{"CAKE", "wedding-cake.txt", 1}, // case insensitive
		{"wdngcake", "wedding-cake.txt", 1},
		{"diesel", "sour-diesel.txt", 1},
		{"zzz", "", 0},
	}
	for _, tt := range tests {
		result, err := search.SearchDirectory(dir, tt.query)
		if err != nil {
			t.Fatalf("query %q failed: %v", tt.query, err)
		}
		if result.TotalCount != tt.count {
			t.Errorf("query %q: expected %d files, got %d", tt.query, tt.count, result.TotalCount)
			continue
		}
		if tt.count == 1 && result.Files[0].Name != tt.want {
			t.Errorf("query %q: got %s, want %s", tt.query, result.Files[0].Name, tt.want)
		}
	}
}

func TestSearchDirectoryMissing(t *testing.T) {
	search := NewSearch(1 << 20)
	if _, err := search.SearchDirectory(filepath.Join(t.TempDir(), "nope"), ""); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestMatchesQuery(t *testing.T) {
	if !matchesQuery("wedding-cake.pdf", "cake") {
		t.Error("substring match failed")
	}
	if !matchesQuery("wedding-cake.pdf", "wcp") {
		t.Error("subsequence match failed")
	}
	if matchesQuery("wedding-cake.pdf", "xyz") {
		t.Error("unexpected match")
	}
}

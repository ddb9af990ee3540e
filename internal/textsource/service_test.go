package textsource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	svc, err := NewService(dir, 1<<20, 5*time.Second)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestServiceResolveTextFile(t *testing.T) {
	dir := t.TempDir()
	path := writeReportFile(t, dir, "report.txt", "Strain: Wedding Cake\nMyrcene 1.2 %")

	svc := newTestService(t, dir)
	doc, err := svc.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if doc.Kind != "text" {
		t.Errorf("expected kind text, got %s", doc.Kind)
	}
	if !strings.Contains(doc.Text, "Wedding Cake") {
		t.Errorf("text content lost: %q", doc.Text)
	}
}

func TestServiceResolveHTMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeReportFile(t, dir, "report.html",
		"<html><body><p>Strain: Gelato</p><script>nope()</script></body></html>")

	svc := newTestService(t, dir)
	doc, err := svc.Resolve(context.Background(), path)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if doc.Kind != "html" {
		t.Errorf("expected kind html, got %s", doc.Kind)
	}
	if !strings.Contains(doc.Text, "Strain: Gelato") {
		t.Errorf("html text missing strain line: %q", doc.Text)
	}
	if strings.Contains(doc.Text, "nope()") {
		t.Error("script content leaked into text")
	}
}

func TestServiceResolveOutsideDirectory(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	path := writeReportFile(t, outside, "escape.txt", "x")

	svc := newTestService(t, dir)
	if _, err := svc.Resolve(context.Background(), path); err == nil {
		t.Error("expected security validation error for file outside configured directory")
	}
}

func TestServiceResolveEmptySource(t *testing.T) {
	svc := newTestService(t, t.TempDir())
	if _, err := svc.Resolve(context.Background(), ""); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestServiceResolveURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/report.html":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><body><p>Strain: Blue Dream</p></body></html>")
		case "/report.txt":
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, "Strain: Blue Dream")
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	svc := newTestService(t, t.TempDir())

	doc, err := svc.Resolve(context.Background(), ts.URL+"/report.html")
	if err != nil {
		t.Fatalf("Resolve URL failed: %v", err)
	}
	if doc.Kind != "html" {
		t.Errorf("expected kind html, got %s", doc.Kind)
	}
	if !strings.Contains(doc.Text, "Blue Dream") {
		t.Errorf("fetched text missing strain: %q", doc.Text)
	}

	doc, err = svc.Resolve(context.Background(), ts.URL+"/report.txt")
	if err != nil {
		t.Fatalf("Resolve URL failed: %v", err)
	}
	if doc.Kind != "text" {
		t.Errorf("expected kind text, got %s", doc.Kind)
	}

	if _, err := svc.Resolve(context.Background(), ts.URL+"/missing"); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestServiceValidateFile(t *testing.T) {
	dir := t.TempDir()
	path := writeReportFile(t, dir, "report.txt", "content")

	svc := newTestService(t, dir)
	result, err := svc.ValidateFile(path)
	if err != nil {
		t.Fatalf("ValidateFile failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("expected valid, got message %q", result.Message)
	}

	missing := filepath.Join(dir, "missing.txt")
	result, err = svc.ValidateFile(missing)
	if err != nil {
		t.Fatalf("ValidateFile failed: %v", err)
	}
	if result.Valid {
		t.Error("expected invalid result for missing file")
	}
}

func TestServiceSearchDefaultsToConfiguredDirectory(t *testing.T) {
	dir := t.TempDir()
	writeReportFile(t, dir, "report.txt", "content")

	svc := newTestService(t, dir)
	result, err := svc.SearchDirectory("", "")
	if err != nil {
		t.Fatalf("SearchDirectory failed: %v", err)
	}
	if result.TotalCount != 1 {
		t.Errorf("expected 1 file, got %d", result.TotalCount)
	}
}

func TestPathGuard(t *testing.T) {
	dir := t.TempDir()
	guard, err := NewPathGuard(dir)
	if err != nil {
		t.Fatal(err)
	}

	inside := writeReportFile(t, dir, "inside.txt", "x")
	if err := guard.ValidatePath(inside); err != nil {
		t.Errorf("path inside directory rejected: %v", err)
	}
	if err := guard.ValidatePath(dir); err != nil {
		t.Errorf("configured directory itself rejected: %v", err)
	}
	if err := guard.ValidatePath(filepath.Join(dir, "..", "escape.txt")); err == nil {
		t.Error("relative traversal accepted")
	}
	if err := guard.ValidatePath("/etc/passwd"); err == nil {
		t.Error("absolute path outside directory accepted")
	}
	if err := guard.ValidatePath(""); err == nil {
		t.Error("empty path accepted")
	}

	// Symlinks pointing outside the directory are rejected.
	outside := writeReportFile(t, t.TempDir(), "target.txt", "x")
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(outside, link); err == nil {
		if err := guard.ValidatePath(link); err == nil {
			t.Error("symlink escaping the directory accepted")
		}
	}
}

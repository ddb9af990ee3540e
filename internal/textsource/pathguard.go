package textsource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathGuard confines file access to the configured report directory,
// guarding against traversal via relative segments or symlinks.
type PathGuard struct {
	configuredDirectory string
}

// NewPathGuard creates a guard for the given directory. The directory is
// not required to exist yet.
func NewPathGuard(configuredDirectory string) (*PathGuard, error) {
	if configuredDirectory == "" {
		return nil, fmt.Errorf("configured directory cannot be empty")
	}
	return &PathGuard{configuredDirectory: configuredDirectory}, nil
}

// ConfiguredDirectory returns the directory the guard confines access to.
func (g *PathGuard) ConfiguredDirectory() string {
	return g.configuredDirectory
}

// ValidatePath checks that path resolves to a location inside the
// configured directory.
func (g *PathGuard) ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	// A directory that does not exist yet cannot be escaped.
	if _, err := os.Stat(g.configuredDirectory); os.IsNotExist(err) {
		return nil
	}

	within, err := g.isWithin(path)
	if err != nil {
		return fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return fmt.Errorf("path is outside configured directory: %s", path)
	}
	return nil
}

func (g *PathGuard) isWithin(path string) (bool, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("failed to resolve path: %w", err)
	}
	absDir, err := filepath.Abs(g.configuredDirectory)
	if err != nil {
		return false, fmt.Errorf("failed to resolve configured directory: %w", err)
	}

	cleanPath := filepath.Clean(absPath)
	cleanDir := filepath.Clean(absDir)

	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}
	realDir := cleanDir
	if resolved, err := filepath.EvalSymlinks(cleanDir); err == nil {
		realDir = resolved
	}

	within := func(p, dir string) bool {
		if p == dir {
			return true
		}
		if !strings.HasSuffix(dir, string(filepath.Separator)) {
			dir += string(filepath.Separator)
		}
		return strings.HasPrefix(p, dir)
	}

	return (within(cleanPath, cleanDir) || within(cleanPath, realDir)) &&
		(within(realPath, cleanDir) || within(realPath, realDir)), nil
}

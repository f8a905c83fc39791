package filesystem

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Local is the OS file system rooted at a project directory.
type Local struct {
	Root string
}

// NewLocal returns a Local rooted at root (the working directory if empty).
func NewLocal(root string) (*Local, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve project root %s: %w", root, err)
	}
	return &Local{Root: abs}, nil
}

// resolve maps a project-relative path to an OS path inside Root.
func (l *Local) resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("empty path")
	}
	full := filepath.Clean(p)
	if !filepath.IsAbs(full) {
		full = filepath.Join(l.Root, filepath.FromSlash(p))
	}
	rel, err := filepath.Rel(l.Root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", outsideRoot(p)
	}
	return full, nil
}

func (l *Local) ListProjectPaths(root string) ([]string, error) {
	dir := root
	if dir == "" || dir == "." {
		dir = l.Root
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(l.Root, dir)
	}

	rules := GetIgnoreRules(dir)
	var paths []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			if d != nil && d.IsDir() && p != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if p == dir {
			return nil
		}
		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rules.MatchesPath(rel + "/") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || rules.MatchesPath(rel) {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not list project files in %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *Local) ReadFile(p string) (string, error) {
	full, err := l.resolve(p)
	if err != nil {
		return "", err
	}
	b, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("could not read file %s: %w", p, err)
	}
	return string(b), nil
}

// WriteFile writes content, keeping CRLF line endings when the existing
// file uses them.
func (l *Local) WriteFile(p, content string) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(full); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create directory %s: %w", dir, err)
		}
	}

	normalized := []byte(content)
	if existing, err := os.ReadFile(full); err == nil && bytes.Contains(existing, []byte("\r\n")) && !bytes.Contains(normalized, []byte("\r\n")) {
		normalized = bytes.ReplaceAll(normalized, []byte("\n"), []byte("\r\n"))
	}
	if err := os.WriteFile(full, normalized, 0o644); err != nil {
		return fmt.Errorf("could not write file %s: %w", p, err)
	}
	return nil
}

func (l *Local) DeleteFile(p string) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		return fmt.Errorf("could not delete file %s: %w", p, err)
	}
	return nil
}

package filesystem

import (
	"sort"
	"strings"
	"sync"

	"github.com/dimslaev/spaider/pkg/types"
)

// Memory is an in-memory FileSystem holding a single project. The root
// argument of ListProjectPaths selects a subdirectory; "" and "." mean all.
type Memory struct {
	mu    sync.RWMutex
	files map[string]string
}

// NewMemory returns a Memory seeded with files (path -> content).
func NewMemory(files map[string]string) *Memory {
	m := &Memory{files: make(map[string]string, len(files))}
	for p, c := range files {
		m.files[types.CleanPath(p)] = c
	}
	return m
}

func (m *Memory) ListProjectPaths(root string) ([]string, error) {
	prefix := types.CleanPath(root)
	if prefix == "." {
		prefix = ""
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		if prefix != "" && !strings.HasPrefix(p, prefix+"/") {
			continue
		}
		paths = append(paths, strings.TrimPrefix(p, prefixWithSlash(prefix)))
	}
	sort.Strings(paths)
	return paths, nil
}

func prefixWithSlash(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

func (m *Memory) ReadFile(p string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.files[types.CleanPath(p)]
	if !ok {
		return "", notExist("read", p)
	}
	return c, nil
}

func (m *Memory) WriteFile(p, content string) error {
	key := types.CleanPath(p)
	if key == "" || strings.HasPrefix(key, "../") || key == ".." {
		return outsideRoot(p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = content
	return nil
}

func (m *Memory) DeleteFile(p string) error {
	key := types.CleanPath(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[key]; !ok {
		return notExist("delete", p)
	}
	delete(m.files, key)
	return nil
}

// Snapshot returns a copy of every file.
func (m *Memory) Snapshot() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.files))
	for p, c := range m.files {
		out[p] = c
	}
	return out
}

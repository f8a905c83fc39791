package filesystem

import (
	"sort"
	"sync"

	"github.com/dimslaev/spaider/pkg/types"
)

// Overlay reads through to a base FileSystem but keeps every write and
// delete in memory. It backs dry runs: the base is never modified.
type Overlay struct {
	base FileSystem

	mu      sync.RWMutex
	written map[string]string
	deleted map[string]bool
}

// NewOverlay wraps base.
func NewOverlay(base FileSystem) *Overlay {
	return &Overlay{
		base:    base,
		written: make(map[string]string),
		deleted: make(map[string]bool),
	}
}

func (o *Overlay) ListProjectPaths(root string) ([]string, error) {
	basePaths, err := o.base.ListProjectPaths(root)
	if err != nil {
		return nil, err
	}
	o.mu.RLock()
	defer o.mu.RUnlock()

	seen := make(map[string]bool, len(basePaths)+len(o.written))
	var out []string
	for _, p := range basePaths {
		if o.deleted[p] || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	for p := range o.written {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (o *Overlay) ReadFile(p string) (string, error) {
	key := types.CleanPath(p)
	o.mu.RLock()
	content, written := o.written[key]
	deleted := o.deleted[key]
	o.mu.RUnlock()

	if written {
		return content, nil
	}
	if deleted {
		return "", notExist("read", p)
	}
	return o.base.ReadFile(key)
}

func (o *Overlay) WriteFile(p, content string) error {
	key := types.CleanPath(p)
	if key == "" {
		return outsideRoot(p)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.written[key] = content
	delete(o.deleted, key)
	return nil
}

func (o *Overlay) DeleteFile(p string) error {
	key := types.CleanPath(p)
	if _, err := o.ReadFile(key); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.written, key)
	o.deleted[key] = true
	return nil
}

// Changes returns the pending writes and deletes.
func (o *Overlay) Changes() (written map[string]string, deleted []string) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	written = make(map[string]string, len(o.written))
	for p, c := range o.written {
		written[p] = c
	}
	for p := range o.deleted {
		deleted = append(deleted, p)
	}
	sort.Strings(deleted)
	return written, deleted
}

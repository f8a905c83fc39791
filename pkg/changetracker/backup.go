package changetracker

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/dimslaev/spaider/pkg/filesystem"
	"github.com/dimslaev/spaider/pkg/types"
)

// BackupsDir holds one directory per run, relative to the project root.
const BackupsDir = ".spaider/backups"

// ManifestFile lists what a run changed. Previous contents live under
// FilesDir next to it.
const (
	ManifestFile = "manifest.json"
	FilesDir     = "files"
)

// Entry describes one file touched by a run.
type Entry struct {
	Path      string          `json:"path"`
	Operation types.Operation `json:"operation"`
	// BackedUp is set when the previous content was saved.
	BackedUp  bool `json:"backedUp"`
	Additions int  `json:"additions"`
	Deletions int  `json:"deletions"`
}

// Manifest is written next to the backed up files.
type Manifest struct {
	RunID     string    `json:"runId"`
	Prompt    string    `json:"prompt"`
	Timestamp time.Time `json:"timestamp"`
	Entries   []Entry   `json:"entries"`
}

// Backup stores the previous content of overwritten and deleted files under
// .spaider/backups/<run-id>/, mirroring their project paths.
type Backup struct {
	RunID string
	Dir   string

	store   filesystem.FileSystem
	mu      sync.Mutex
	entries []Entry
}

// NewBackup prepares the backup directory of a run. Nothing is written
// until the first Record.
func NewBackup(projectRoot, runID string) (*Backup, error) {
	dir := path.Join(BackupsDir, runID)
	root, err := filesystem.NewLocal(projectRoot)
	if err != nil {
		return nil, err
	}
	store, err := filesystem.NewLocal(filepath.Join(root.Root, filepath.FromSlash(dir)))
	if err != nil {
		return nil, err
	}
	return &Backup{RunID: runID, Dir: store.Root, store: store}, nil
}

// NewBackupIn is NewBackup over an arbitrary store, used by dry runs and tests.
func NewBackupIn(store filesystem.FileSystem, runID string) *Backup {
	return &Backup{RunID: runID, Dir: runID, store: store}
}

// Record saves before when the file existed and remembers the entry.
func (b *Backup) Record(p string, op types.Operation, existed bool, before string, diff *Diff) error {
	entry := Entry{Path: p, Operation: op}
	if diff != nil {
		entry.Additions, entry.Deletions = diff.Additions, diff.Deletions
	}
	if existed {
		if err := b.store.WriteFile(path.Join(FilesDir, p), before); err != nil {
			return fmt.Errorf("failed to back up %s: %w", p, err)
		}
		entry.BackedUp = true
	}

	b.mu.Lock()
	b.entries = append(b.entries, entry)
	b.mu.Unlock()
	return nil
}

// Entries returns a copy of the recorded entries.
func (b *Backup) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Entry(nil), b.entries...)
}

// WriteManifest stores the manifest. It is a no-op when nothing was recorded.
func (b *Backup) WriteManifest(prompt string) error {
	entries := b.Entries()
	if len(entries) == 0 {
		return nil
	}
	m := Manifest{RunID: b.RunID, Prompt: prompt, Timestamp: time.Now().UTC(), Entries: entries}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup manifest: %w", err)
	}
	if err := b.store.WriteFile(ManifestFile, string(data)+"\n"); err != nil {
		return fmt.Errorf("failed to write backup manifest: %w", err)
	}
	return nil
}

// LoadManifest reads the manifest of a backup store.
func LoadManifest(store filesystem.FileSystem) (*Manifest, error) {
	data, err := store.ReadFile(ManifestFile)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("invalid backup manifest: %w", err)
	}
	return &m, nil
}

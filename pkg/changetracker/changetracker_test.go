package changetracker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimslaev/spaider/pkg/filesystem"
	"github.com/dimslaev/spaider/pkg/types"
)

func TestGetDiff(t *testing.T) {
	tests := []struct {
		name      string
		before    string
		after     string
		want      string
		additions int
		deletions int
	}{
		{
			name:      "single line change",
			before:    "a\nb\nc\n",
			after:     "a\nB\nc\n",
			want:      "--- a/f.txt\n+++ b/f.txt\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n",
			additions: 1,
			deletions: 1,
		},
		{
			name:      "new file",
			before:    "",
			after:     "x\ny\n",
			want:      "--- a/f.txt\n+++ b/f.txt\n@@ -0,0 +1,2 @@\n+x\n+y\n",
			additions: 2,
		},
		{
			name:      "deleted file",
			before:    "x\n",
			after:     "",
			want:      "--- a/f.txt\n+++ b/f.txt\n@@ -1,1 +0,0 @@\n-x\n",
			deletions: 1,
		},
		{
			name:   "no change",
			before: "same\n",
			after:  "same\n",
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := GetDiff("f.txt", tt.before, tt.after)
			assert.Equal(t, tt.want, d.Unified)
			assert.Equal(t, tt.additions, d.Additions)
			assert.Equal(t, tt.deletions, d.Deletions)
		})
	}
}

func TestGetDiff_SplitsDistantHunks(t *testing.T) {
	var before, after []string
	for i := 0; i < 20; i++ {
		line := string(rune('a' + i))
		before = append(before, line)
		switch i {
		case 1, 18:
			after = append(after, strings.ToUpper(line))
		default:
			after = append(after, line)
		}
	}
	d := GetDiff("x", strings.Join(before, "\n")+"\n", strings.Join(after, "\n")+"\n")

	assert.Equal(t, 2, strings.Count(d.Unified, "@@ -"))
	assert.Contains(t, d.Unified, "@@ -1,5 +1,5 @@\n")
	assert.Contains(t, d.Unified, "@@ -16,5 +16,5 @@\n")
	assert.Equal(t, "x +2 -2", d.Stat())
}

func TestGetDiff_LongFile(t *testing.T) {
	var before, after []string
	for i := 0; i < 15; i++ {
		line := "line" + string(rune('A'+i))
		before = append(before, line)
		if i == 11 {
			line = "CHANGED"
		}
		after = append(after, line)
	}
	d := GetDiff("long.txt", strings.Join(before, "\n")+"\n", strings.Join(after, "\n")+"\n")

	want := "--- a/long.txt\n+++ b/long.txt\n" +
		"@@ -9,7 +9,7 @@\n" +
		" lineI\n lineJ\n lineK\n-lineL\n+CHANGED\n lineM\n lineN\n lineO\n"
	assert.Equal(t, want, d.Unified)
	assert.Equal(t, "long.txt +1 -1", d.Stat())
}

func TestGetDiff_RepeatedLines(t *testing.T) {
	before := strings.Repeat("}\n", 12) + "x\n"
	after := strings.Repeat("}\n", 12) + "y\n"
	d := GetDiff("r.go", before, after)

	assert.Equal(t, 1, d.Additions)
	assert.Equal(t, 1, d.Deletions)
	assert.Contains(t, d.Unified, "@@ -10,4 +10,4 @@\n }\n }\n }\n-x\n+y\n")
}

func TestBackup(t *testing.T) {
	root := t.TempDir()
	b, err := NewBackup(root, "run-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".spaider", "backups", "run-1"), b.Dir)

	require.NoError(t, b.Record("src/a.ts", types.OperationModifyFile, true, "old a", &Diff{Additions: 1, Deletions: 1}))
	require.NoError(t, b.Record("src/new.ts", types.OperationNewFile, false, "", nil))
	require.NoError(t, b.WriteManifest("rename a"))

	saved, err := os.ReadFile(filepath.Join(b.Dir, "files", "src", "a.ts"))
	require.NoError(t, err)
	assert.Equal(t, "old a", string(saved))
	_, err = os.Stat(filepath.Join(b.Dir, "files", "src", "new.ts"))
	assert.True(t, os.IsNotExist(err))

	store, err := filesystem.NewLocal(b.Dir)
	require.NoError(t, err)
	m, err := LoadManifest(store)
	require.NoError(t, err)
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, "rename a", m.Prompt)
	assert.Equal(t, []Entry{
		{Path: "src/a.ts", Operation: types.OperationModifyFile, BackedUp: true, Additions: 1, Deletions: 1},
		{Path: "src/new.ts", Operation: types.OperationNewFile},
	}, m.Entries)
}

func TestBackup_NothingRecorded(t *testing.T) {
	store := filesystem.NewMemory(nil)
	b := NewBackupIn(store, "run-2")

	require.NoError(t, b.WriteManifest("noop"))
	assert.Empty(t, store.Snapshot())
}

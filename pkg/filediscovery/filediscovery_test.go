package filediscovery

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimslaev/spaider/pkg/filesystem"
	"github.com/dimslaev/spaider/pkg/types"
)

func newProject() *filesystem.Memory {
	return filesystem.NewMemory(map[string]string{
		"src/a.ts":            "export const alpha = 1;\n",
		"src/b.ts":            "export function fooBar() { return 1; }\n",
		"src/lib/foo_util.py": "def foo_helper():\n    pass\n",
		"src/Widget.tsx":      "export const Widget = () => null;\n",
		"lib/a.ts":            "export const other = 2;\n",
		"README.md":           "# foo\n",
	})
}

func TestDiscoverFromPaths_ExactHint(t *testing.T) {
	fd := NewFileDiscovery(newProject(), Options{})

	got, err := fd.DiscoverFromPaths([]string{"src/a.ts"}, nil, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.ts"}, got)
}

func TestDiscoverFromPaths_Tiers(t *testing.T) {
	fd := NewFileDiscovery(newProject(), Options{})

	t.Run("suffix at segment boundary", func(t *testing.T) {
		got, err := fd.DiscoverFromPaths([]string{"a.ts"}, nil, ".")
		require.NoError(t, err)
		assert.Equal(t, []string{"lib/a.ts", "src/a.ts"}, got)
	})

	t.Run("case insensitive", func(t *testing.T) {
		got, err := fd.DiscoverFromPaths([]string{"SRC/widget.TSX"}, nil, ".")
		require.NoError(t, err)
		assert.Equal(t, []string{"src/Widget.tsx"}, got)
	})

	t.Run("substring fallback", func(t *testing.T) {
		got, err := fd.DiscoverFromPaths([]string{"foo_ut"}, nil, ".")
		require.NoError(t, err)
		assert.Equal(t, []string{"src/lib/foo_util.py"}, got)
	})

	t.Run("unknown hint yields nothing", func(t *testing.T) {
		got, err := fd.DiscoverFromPaths([]string{"missing.go"}, nil, ".")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("known files excluded", func(t *testing.T) {
		got, err := fd.DiscoverFromPaths([]string{"a.ts"}, []string{"./src/a.ts"}, ".")
		require.NoError(t, err)
		assert.Equal(t, []string{"lib/a.ts"}, got)
	})
}

func TestDiscoverFromSearchTerms(t *testing.T) {
	fd := NewFileDiscovery(newProject(), Options{})

	got, err := fd.DiscoverFromSearchTerms(context.Background(), []string{"foo"}, nil, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/b.ts", "src/lib/foo_util.py"}, got)
	assert.NotContains(t, got, "src/a.ts")
	assert.NotContains(t, got, "README.md")
}

func TestDiscoverFromSearchTerms_RanksByMatchCount(t *testing.T) {
	fs := filesystem.NewMemory(map[string]string{
		"one.go": "package x\n\nfunc ParseConfig() {}\n",
		"two.go": "package x\n\nfunc ParseConfig() {}\n\nfunc LoadConfig() {}\n",
	})
	fd := NewFileDiscovery(fs, Options{})

	got, err := fd.DiscoverFromSearchTerms(context.Background(), []string{"config"}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"two.go", "one.go"}, got)
}

func TestDiscoverFromSearchTerms_Capped(t *testing.T) {
	fd := NewFileDiscovery(newProject(), Options{MaxTermMatches: 1})

	got, err := fd.DiscoverFromSearchTerms(context.Background(), []string{"foo"}, nil, ".")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestDiscover_PathsFirstWithoutDuplicates(t *testing.T) {
	fd := NewFileDiscovery(newProject(), Options{})
	intent := types.Intent{
		FilePaths:   []string{"src/lib/foo_util.py", "src/Widget.tsx"},
		SearchTerms: []string{"foo"},
	}

	res, err := fd.Discover(context.Background(), intent, []string{"src/Widget.tsx"}, ".")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/lib/foo_util.py", "src/b.ts"}, res.Paths())
	assert.Equal(t, 1, res.FromPaths)
	assert.Equal(t, 1, res.FromTerms)
	assert.Equal(t, 6, res.TotalFiles)

	for _, f := range res.Files {
		assert.False(t, f.Loaded)
		assert.Empty(t, f.Content)
	}
	assert.Contains(t, res.Files[1].Symbols, "fooBar")
}

func TestDiscover_NoHints(t *testing.T) {
	fd := NewFileDiscovery(newProject(), Options{})

	res, err := fd.Discover(context.Background(), types.Intent{NeedsMoreContext: true}, nil, ".")
	require.NoError(t, err)
	assert.Empty(t, res.Files)
}

func TestDiscover_Cancelled(t *testing.T) {
	fd := NewFileDiscovery(newProject(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fd.Discover(ctx, types.Intent{SearchTerms: []string{"foo"}}, nil, ".")
	assert.True(t, errors.Is(err, context.Canceled))
}

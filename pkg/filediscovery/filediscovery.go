package filediscovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dimslaev/spaider/pkg/filesystem"
	"github.com/dimslaev/spaider/pkg/index"
	"github.com/dimslaev/spaider/pkg/types"
	"github.com/dimslaev/spaider/pkg/utils"
)

// DefaultMaxTermMatches caps term-based results when no limit is configured.
const DefaultMaxTermMatches = 20

// FileDiscovery resolves intent hints to project files.
type FileDiscovery struct {
	fs             filesystem.FileSystem
	extractor      index.Extractor
	matcher        index.Matcher
	logger         *utils.Logger
	maxTermMatches int
}

// Options configures a FileDiscovery. Nil fields get defaults.
type Options struct {
	Extractor      index.Extractor
	Matcher        index.Matcher
	Logger         *utils.Logger
	MaxTermMatches int
}

// NewFileDiscovery creates a new file discovery instance
func NewFileDiscovery(fs filesystem.FileSystem, opts Options) *FileDiscovery {
	if opts.Extractor == nil {
		opts.Extractor = index.NewTreeSitterExtractor()
	}
	if opts.Matcher == nil {
		opts.Matcher = index.NewTermMatcher()
	}
	if opts.Logger == nil {
		opts.Logger = utils.Discard()
	}
	if opts.MaxTermMatches <= 0 {
		opts.MaxTermMatches = DefaultMaxTermMatches
	}
	return &FileDiscovery{
		fs:             fs,
		extractor:      opts.Extractor,
		matcher:        opts.Matcher,
		logger:         opts.Logger,
		maxTermMatches: opts.MaxTermMatches,
	}
}

// Result represents the result of a discovery run. Files are new to the
// pipeline and carry no content.
type Result struct {
	Files      []types.FileContext
	FromPaths  int
	FromTerms  int
	TotalFiles int
	Duration   time.Duration
}

// Paths returns the discovered paths in order.
func (r *Result) Paths() []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = f.Path
	}
	return out
}

// Discover runs path resolution then term search and merges them: path
// results first, no duplicates, nothing already known.
func (fd *FileDiscovery) Discover(ctx context.Context, intent types.Intent, known []string, projectRoot string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	hints, terms := intent.FilePaths, intent.SearchTerms
	if len(hints) == 0 && len(terms) == 0 {
		result.Duration = time.Since(start)
		return result, nil
	}

	all, err := fd.fs.ListProjectPaths(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}
	result.TotalFiles = len(all)
	knownSet := toSet(known)

	seen := make(map[string]bool)
	for _, p := range fd.resolvePaths(hints, knownSet, all) {
		if !seen[p] {
			seen[p] = true
			result.Files = append(result.Files, types.FileContext{Path: p})
			result.FromPaths++
		}
	}

	matches, err := fd.searchTerms(ctx, terms, knownSet, all)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if !seen[m.path] {
			seen[m.path] = true
			result.Files = append(result.Files, types.FileContext{Path: m.path, Symbols: m.symbols})
			result.FromTerms++
		}
	}

	result.Duration = time.Since(start)
	fd.logger.Logf("discovery: %d from paths, %d from terms out of %d files in %s",
		result.FromPaths, result.FromTerms, result.TotalFiles, result.Duration.Round(time.Millisecond))
	return result, nil
}

// DiscoverFromPaths resolves hinted paths or fragments against the project
// file set, case-insensitively. Only existing, not yet known paths are returned.
func (fd *FileDiscovery) DiscoverFromPaths(hints, known []string, projectRoot string) ([]string, error) {
	if len(hints) == 0 {
		return []string{}, nil
	}
	all, err := fd.fs.ListProjectPaths(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}
	return fd.resolvePaths(hints, toSet(known), all), nil
}

// DiscoverFromSearchTerms returns not yet known files with at least one
// symbol matching a term, best matches first.
func (fd *FileDiscovery) DiscoverFromSearchTerms(ctx context.Context, terms, known []string, projectRoot string) ([]string, error) {
	if len(terms) == 0 {
		return []string{}, nil
	}
	all, err := fd.fs.ListProjectPaths(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to list project files: %w", err)
	}
	matches, err := fd.searchTerms(ctx, terms, toSet(known), all)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.path
	}
	return out, nil
}

// resolvePaths matches each hint in three tiers (exact path, suffix at a
// segment boundary, substring) and keeps the best non-empty tier.
func (fd *FileDiscovery) resolvePaths(hints []string, known map[string]bool, all []string) []string {
	lowered := make([]string, len(all))
	for i, p := range all {
		lowered[i] = strings.ToLower(p)
	}

	out := []string{}
	seen := make(map[string]bool)
	for _, hint := range hints {
		h := strings.ToLower(strings.TrimPrefix(types.CleanPath(hint), "/"))
		if h == "" || h == "." {
			continue
		}

		var exact, suffix, partial []string
		for i, lp := range lowered {
			switch {
			case lp == h:
				exact = append(exact, all[i])
			case strings.HasSuffix(lp, "/"+h):
				suffix = append(suffix, all[i])
			case strings.Contains(lp, h):
				partial = append(partial, all[i])
			}
		}

		best := exact
		if len(best) == 0 {
			best = suffix
		}
		if len(best) == 0 {
			best = partial
		}
		if len(best) == 0 {
			fd.logger.Logf("discovery: no project file matches hint %q", hint)
		}
		for _, p := range best {
			if known[p] || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

type termMatch struct {
	path    string
	score   int
	symbols []string
}

func (fd *FileDiscovery) searchTerms(ctx context.Context, terms []string, known map[string]bool, all []string) ([]termMatch, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	var matches []termMatch
	for _, p := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if known[p] || !fd.extractor.Supports(p) {
			continue
		}
		content, err := fd.fs.ReadFile(p)
		if err != nil {
			fd.logger.Logf("discovery: skipping %s: %v", p, err)
			continue
		}

		symbols := index.Names(fd.extractor.Extract(p, content))
		score := 0
		for _, sym := range symbols {
			for _, term := range terms {
				if fd.matcher.Matches(term, sym) {
					score++
					break
				}
			}
		}
		if score > 0 {
			matches = append(matches, termMatch{path: p, score: score, symbols: symbols})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score == matches[j].score {
			return matches[i].path < matches[j].path
		}
		return matches[i].score > matches[j].score
	})
	if len(matches) > fd.maxTermMatches {
		matches = matches[:fd.maxTermMatches]
	}
	return matches, nil
}

func toSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[types.CleanPath(p)] = true
	}
	return set
}

package index

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Symbol is a named declaration found in a source file.
type Symbol struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // func, class, type, method, var
}

// FileSymbols groups the symbols of one file.
type FileSymbols struct {
	File    string   `json:"file"`
	Symbols []Symbol `json:"symbols"`
}

// Extractor pulls symbols out of file text.
type Extractor interface {
	// Supports reports whether path has a language the extractor understands.
	Supports(path string) bool
	Extract(path, content string) []Symbol
}

type symbolPattern struct {
	kind string
	re   *regexp.Regexp
}

var jsPatterns = []symbolPattern{
	{"func", regexp.MustCompile(`(?m)\bfunction\s*\*?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*[<(]`)},
	{"func", regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*(?::[^=]+)?=\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][A-Za-z0-9_$]*)\s*(?::[^=]+)?=>`)},
	{"var", regexp.MustCompile(`(?m)^\s*export\s+(?:const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)},
	{"class", regexp.MustCompile(`(?m)\bclass\s+([A-Za-z_$][A-Za-z0-9_$]*)\b`)},
	{"type", regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:declare\s+)?interface\s+([A-Za-z_$][A-Za-z0-9_$]*)`)},
	{"type", regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:declare\s+)?type\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*[<=]`)},
	{"type", regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:const\s+)?enum\s+([A-Za-z_$][A-Za-z0-9_$]*)`)},
}

var regexPatterns = map[string][]symbolPattern{
	".go": {
		{"func", regexp.MustCompile(`(?m)^\s*func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*[\[(]`)},
		{"type", regexp.MustCompile(`(?m)^\s*type\s+([A-Za-z_][A-Za-z0-9_]*)\b`)},
	},
	".py": {
		{"func", regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)},
		{"class", regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_][A-Za-z0-9_]*)\b`)},
	},
	".js":  jsPatterns,
	".jsx": jsPatterns,
	".mjs": jsPatterns,
	".cjs": jsPatterns,
	".ts":  jsPatterns,
	".tsx": jsPatterns,
	".rb": {
		{"func", regexp.MustCompile(`(?m)^\s*def\s+(?:self\.)?([A-Za-z_][A-Za-z0-9_!?]*)`)},
		{"class", regexp.MustCompile(`(?m)^\s*(?:class|module)\s+([A-Za-z_][A-Za-z0-9_:]*)`)},
	},
	".php": {
		{"func", regexp.MustCompile(`(?m)^\s*(?:(?:public|private|protected|static)\s+)*function\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)},
		{"class", regexp.MustCompile(`(?m)^\s*(?:abstract\s+|final\s+)?(?:class|interface|trait)\s+([A-Za-z_][A-Za-z0-9_]*)`)},
	},
	".rs": {
		{"func", regexp.MustCompile(`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)\b`)},
		{"type", regexp.MustCompile(`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait|type)\s+([A-Za-z_][A-Za-z0-9_]*)\b`)},
	},
	".java": {
		{"class", regexp.MustCompile(`(?m)\b(?:class|interface|enum|record)\s+([A-Za-z_][A-Za-z0-9_]*)\b`)},
		{"method", regexp.MustCompile(`(?m)\b([A-Za-z_][A-Za-z0-9_<>\[\]]*)\s+([A-Za-z_][A-Za-z0-9_]*)\s*\([^;]*\)\s*(?:throws\s+[^{]+)?\{`)},
	},
}

// javaKeywords guards the method pattern against control statements.
var javaKeywords = map[string]bool{"if": true, "for": true, "while": true, "switch": true, "catch": true, "return": true, "new": true}

// RegexExtractor extracts symbols with per-language regular expressions.
// It is fast and tolerant of broken code.
type RegexExtractor struct{}

func (RegexExtractor) Supports(path string) bool {
	_, ok := regexPatterns[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (RegexExtractor) Extract(path, content string) []Symbol {
	ext := strings.ToLower(filepath.Ext(path))
	var out []Symbol
	add := func(kind, name string) {
		if name != "" {
			out = append(out, Symbol{Name: name, Kind: kind})
		}
	}
	for _, p := range regexPatterns[ext] {
		for _, m := range p.re.FindAllStringSubmatch(content, -1) {
			name := m[1]
			if ext == ".java" && p.kind == "method" {
				name = m[2]
				if javaKeywords[name] || javaKeywords[m[1]] {
					continue
				}
			}
			add(p.kind, name)
		}
	}
	return dedupe(out)
}

// dedupe drops repeated names, keeping the first kind seen.
func dedupe(in []Symbol) []Symbol {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		out = append(out, s)
	}
	return out
}

// Names returns the symbol names in order.
func Names(symbols []Symbol) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = s.Name
	}
	return out
}

// Summarize renders a compact "path: a, b, c" listing used in prompts.
// Files without symbols are omitted. Paths are sorted for stable prompts.
func Summarize(files []FileSymbols) string {
	sorted := append([]FileSymbols(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	var b strings.Builder
	for _, f := range sorted {
		if len(f.Symbols) == 0 {
			continue
		}
		b.WriteString(f.File)
		b.WriteString(": ")
		b.WriteString(strings.Join(Names(f.Symbols), ", "))
		b.WriteString("\n")
	}
	return b.String()
}

package parser

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// startOfBlockRegex matches the beginning of a code block, e.g., ``` or ```go.
	// It captures the language identifier (if present) in the first submatch.
	startOfBlockRegex = regexp.MustCompile("^\\s*```([\\w.+-]*)\\s*$")
	fence             = "```"
)

// isStartOfCodeBlock checks if a line marks the beginning of a code block.
// It also returns the detected language (e.g., "go", "json", or empty string if none specified).
func isStartOfCodeBlock(line string) (bool, string) {
	matches := startOfBlockRegex.FindStringSubmatch(line)
	if len(matches) > 0 {
		return true, strings.ToLower(matches[1])
	}
	return false, ""
}

// isEndOfCodeBlock checks if a line is a bare closing fence.
func isEndOfCodeBlock(line string) bool {
	return strings.TrimSpace(line) == fence
}

// StripCodeFences removes a leading fence line (with or without a language
// tag) and a trailing closing fence from s, along with surrounding
// whitespace. Text that is not wrapped is returned trimmed and otherwise
// untouched. Fences in the middle of the text are left alone.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	lines := strings.Split(s, "\n")
	if ok, _ := isStartOfCodeBlock(lines[0]); ok {
		lines = lines[1:]
	} else if strings.HasPrefix(lines[0], fence) {
		// ```{"a":1} on a single line
		lines[0] = strings.TrimPrefix(lines[0], fence)
		lines[0] = strings.TrimPrefix(lines[0], "json")
	}
	if n := len(lines); n > 0 {
		if isEndOfCodeBlock(lines[n-1]) {
			lines = lines[:n-1]
		} else if strings.HasSuffix(strings.TrimSpace(lines[n-1]), fence) {
			lines[n-1] = strings.TrimSuffix(strings.TrimSpace(lines[n-1]), fence)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return true
	}
	return false
}

// CleanCodeResponse turns a free-form rewrite reply into file content.
// A reply wrapped in a fence is unwrapped. A reply that carries exactly one
// fenced block surrounded by prose is reduced to that block, unless the
// target itself is a markdown file where fences are legitimate content.
func CleanCodeResponse(response, targetPath string) string {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, fence) {
		return StripCodeFences(trimmed)
	}
	if isMarkdownPath(targetPath) {
		return trimmed
	}
	blocks, err := ExtractCodeBlocks([]byte(trimmed))
	if err != nil || len(blocks) != 1 {
		return trimmed
	}
	return strings.TrimSpace(blocks[0].Content)
}

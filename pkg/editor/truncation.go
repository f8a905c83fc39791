package editor

import (
	"path/filepath"
	"strings"
)

// truncationMarkers are placeholders models leave when they skip content.
var truncationMarkers = []string{
	"... (rest of file unchanged)",
	"... rest of the file ...",
	"... content truncated ...",
	"... existing code ...",
	"// ... (truncated)",
	"// rest of the file unchanged",
	"# rest of the file unchanged",
	"[TRUNCATED]",
}

// looksTruncated reports whether rewritten content probably lost part of
// the file. It is a heuristic and only drives a warning.
func looksTruncated(code, path string) bool {
	for _, marker := range truncationMarkers {
		if containsMarkerOutsideQuotes(code, marker) {
			return true
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".go", ".js", ".jsx", ".ts", ".tsx", ".java", ".rs", ".php":
		// a large brace imbalance means the model stopped mid-block
		if strings.Count(code, "{") > strings.Count(code, "}")+5 {
			return true
		}
	}
	return false
}

// containsMarkerOutsideQuotes ignores markers inside double-quoted or
// backtick strings on the same line.
func containsMarkerOutsideQuotes(text, marker string) bool {
	if !strings.Contains(strings.ToLower(text), strings.ToLower(marker)) {
		return false
	}
	for _, line := range strings.Split(text, "\n") {
		inDouble, inBacktick := false, false
		for i := 0; i < len(line); i++ {
			switch ch := line[i]; {
			case ch == '`' && !inDouble:
				inBacktick = !inBacktick
			case ch == '"' && !inBacktick && (i == 0 || line[i-1] != '\\'):
				inDouble = !inDouble
			}
			if !inDouble && !inBacktick && i+len(marker) <= len(line) && strings.EqualFold(line[i:i+len(marker)], marker) {
				return true
			}
		}
	}
	return false
}

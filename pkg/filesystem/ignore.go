package filesystem

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile is the project-level ignore file, in .gitignore syntax.
const IgnoreFile = ".spaider/ignore"

// GetIgnoreRules compiles the ignore rules for rootDir: built-in workspace
// patterns, .gitignore, .spaider/ignore and common build/vendor patterns.
func GetIgnoreRules(rootDir string) *ignore.GitIgnore {
	var allLines []string

	// Essential patterns first, these are never overridden
	allLines = append(allLines, getEssentialPatterns()...)

	if content, err := os.ReadFile(filepath.Join(rootDir, ".gitignore")); err == nil {
		allLines = append(allLines, strings.Split(string(content), "\n")...)
	}

	if content, err := os.ReadFile(filepath.Join(rootDir, filepath.FromSlash(IgnoreFile))); err == nil {
		allLines = append(allLines, strings.Split(string(content), "\n")...)
	}

	allLines = append(allLines, getFallbackIgnorePatterns()...)

	// Filter out empty lines and comments
	var filteredLines []string
	for _, line := range allLines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "#") {
			filteredLines = append(filteredLines, line)
		}
	}

	return ignore.CompileIgnoreLines(filteredLines...)
}

// getEssentialPatterns keeps the tool from reading its own workspace.
func getEssentialPatterns() []string {
	return []string{
		".spaider/",
		".spaider/*",
		"/spaider", // binary built in place
	}
}

func getFallbackIgnorePatterns() []string {
	return []string{
		// VCS
		".git/",
		".svn/",
		".hg/",

		// OS and editor files
		".DS_Store",
		"Thumbs.db",
		".idea/",
		".vscode/",
		"*.swp",

		// Dependencies and build output
		"node_modules/",
		"vendor/",
		"dist/",
		"build/",
		"target/",
		"coverage/",
		".next/",
		".nuxt/",
		".cache/",
		"__pycache__/",
		"*.pyc",
		".venv/",
		"venv/",
		"*.test",
		"*.out",

		// Binary and generated artifacts
		"*.exe",
		"*.dll",
		"*.so",
		"*.dylib",
		"*.class",
		"*.jar",
		"*.png",
		"*.jpg",
		"*.jpeg",
		"*.gif",
		"*.ico",
		"*.pdf",
		"*.zip",
		"*.tar.gz",
		"*.lock",
		"*.log",
		"*.min.js",
		"*.map",

		// Secrets
		".env",
		"*.env",
		"*.pem",
		"*.key",
	}
}

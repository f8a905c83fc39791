package prompts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dimslaev/spaider/pkg/types"
	"github.com/dimslaev/spaider/pkg/utils"
)

// --- Stage prompt builders ---

// BuildIntentPrompt shows the request, a short preview of every known file
// and the symbol summary the search terms must come from.
func BuildIntentPrompt(request string, files []types.FileContext, symbolSummary string, previewLines int) string {
	var b strings.Builder
	b.WriteString("User request:\n")
	b.WriteString(strings.TrimSpace(request))
	b.WriteString("\n\nKnown files:\n")
	b.WriteString(formatFiles(files, previewLines))
	b.WriteString("\nSymbol summary:\n")
	if s := strings.TrimSpace(symbolSummary); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	} else {
		b.WriteString("(no symbols)\n")
	}
	return b.String()
}

// BuildPlannerPrompt shows the task and fuller previews of all known files.
func BuildPlannerPrompt(description string, files []types.FileContext, previewLines int) string {
	var b strings.Builder
	b.WriteString("Task:\n")
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n\nFiles:\n")
	b.WriteString(formatFiles(files, previewLines))
	return b.String()
}

// BuildGeneratorPrompt asks for the changes of one planned file.
func BuildGeneratorPrompt(description string, overview types.ChangeOverview, file types.FileContext) string {
	var b strings.Builder
	b.WriteString("Task:\n")
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n\n")
	writeOverview(&b, overview)
	b.WriteString("\n")
	writeCurrentContent(&b, overview, file)
	return b.String()
}

// BuildBatchGeneratorPrompt asks for the changes of every planned file in
// one request. files is keyed by path.
func BuildBatchGeneratorPrompt(description string, overviews []types.ChangeOverview, files map[string]types.FileContext) string {
	var b strings.Builder
	b.WriteString("Task:\n")
	b.WriteString(strings.TrimSpace(description))
	b.WriteString("\n\nPlan:\n")
	for i, o := range overviews {
		fmt.Fprintf(&b, "%d. %s (%s): %s\n", i+1, o.FilePath, o.Operation, strings.TrimSpace(o.Overview))
	}
	for _, o := range overviews {
		b.WriteString("\n")
		writeCurrentContent(&b, o, files[o.FilePath])
	}
	return b.String()
}

// BuildApplyPrompt asks for the complete rewritten content of path.
func BuildApplyPrompt(path, content string, changes []types.Change) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n\nCurrent content:\n", path)
	writeFence(&b, path, content)
	b.WriteString("\nModifications to apply:\n")
	for i, c := range changes {
		fmt.Fprintf(&b, "\n%d. [%s] %s\n", i+1, c.ModificationType, strings.TrimSpace(c.ModificationDescription))
		if c.OldCodeBlock != "" {
			b.WriteString("Existing code:\n")
			writeFence(&b, path, c.OldCodeBlock)
		}
		if c.NewCodeBlock != "" {
			b.WriteString("New code:\n")
			writeFence(&b, path, c.NewCodeBlock)
		}
	}
	b.WriteString("\nReturn the complete updated content of ")
	b.WriteString(path)
	b.WriteString(".\n")
	return b.String()
}

// BuildAnswerPrompt is used for informational requests.
func BuildAnswerPrompt(request string, files []types.FileContext, previewLines int) string {
	var b strings.Builder
	b.WriteString("Question:\n")
	b.WriteString(strings.TrimSpace(request))
	b.WriteString("\n\nRelevant files:\n")
	b.WriteString(formatFiles(files, previewLines))
	return b.String()
}

func writeOverview(b *strings.Builder, o types.ChangeOverview) {
	fmt.Fprintf(b, "File: %s\nOperation: %s\nPlan: %s\n", o.FilePath, o.Operation, strings.TrimSpace(o.Overview))
}

func writeCurrentContent(b *strings.Builder, o types.ChangeOverview, file types.FileContext) {
	switch {
	case o.Operation == types.OperationNewFile:
		fmt.Fprintf(b, "%s does not exist yet.\n", o.FilePath)
	case !file.Loaded:
		fmt.Fprintf(b, "Content of %s is not available.\n", o.FilePath)
	default:
		fmt.Fprintf(b, "Current content of %s:\n", o.FilePath)
		writeFence(b, o.FilePath, file.Content)
	}
}

// formatFiles renders path headers with up to maxLines lines of content.
func formatFiles(files []types.FileContext, maxLines int) string {
	if len(files) == 0 {
		return "(none)\n"
	}
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "### %s\n", f.Path)
		if !f.Loaded {
			b.WriteString("(content not loaded)\n\n")
			continue
		}
		head, truncated := utils.HeadLines(f.Content, maxLines)
		writeFence(&b, f.Path, head)
		if truncated {
			fmt.Fprintf(&b, "(showing first %d lines)\n", maxLines)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeFence(b *strings.Builder, path, content string) {
	b.WriteString("```")
	b.WriteString(languageFor(path))
	b.WriteString("\n")
	b.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
}

var languages = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".rb":   "ruby",
	".php":  "php",
	".rs":   "rust",
	".java": "java",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".md":   "markdown",
	".html": "html",
	".css":  "css",
	".sh":   "bash",
	".sql":  "sql",
}

func languageFor(path string) string {
	return languages[strings.ToLower(filepath.Ext(path))]
}

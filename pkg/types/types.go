package types

import (
	"fmt"
	"path"
	"strings"
)

// Operation is the kind of action planned for a single file.
type Operation string

const (
	OperationNewFile    Operation = "new_file"
	OperationDeleteFile Operation = "delete_file"
	OperationModifyFile Operation = "modify_file"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OperationNewFile, OperationDeleteFile, OperationModifyFile:
		return true
	}
	return false
}

// ModificationType describes how a Change touches existing content.
type ModificationType string

const (
	ModificationReplaceBlock ModificationType = "replace_block"
	ModificationAddBlock     ModificationType = "add_block"
	ModificationRemoveBlock  ModificationType = "remove_block"
	ModificationNone         ModificationType = "none"
)

// Valid reports whether mt is one of the known modification types.
func (mt ModificationType) Valid() bool {
	switch mt {
	case ModificationReplaceBlock, ModificationAddBlock, ModificationRemoveBlock, ModificationNone:
		return true
	}
	return false
}

// FileContext is a file known to a pipeline run. Content is loaded lazily;
// Loaded distinguishes a file that was never read from an empty one.
type FileContext struct {
	Path    string   `json:"path"`
	Content string   `json:"content,omitempty"`
	Loaded  bool     `json:"-"`
	Symbols []string `json:"symbols,omitempty"`
}

// Intent is the structured classification of a user request.
type Intent struct {
	EditMode         bool     `json:"editMode" jsonschema:"description=true only if the request unambiguously requires changing files"`
	Description      string   `json:"description" jsonschema:"description=concise statement of the task"`
	NeedsMoreContext bool     `json:"needsMoreContext" jsonschema:"description=true if files other than the ones shown are needed"`
	FilePaths        []string `json:"filePaths" jsonschema:"description=paths or path fragments of files that are likely relevant"`
	SearchTerms      []string `json:"searchTerms" jsonschema:"description=symbol names from the summary ordered by relevance descending"`
}

// Normalize replaces nil hint slices with empty ones and trims blanks.
func (i *Intent) Normalize() {
	i.FilePaths = compact(i.FilePaths)
	i.SearchTerms = compact(i.SearchTerms)
	i.Description = strings.TrimSpace(i.Description)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ChangeOverview is the high-level plan for one file, produced before any code.
type ChangeOverview struct {
	FilePath  string    `json:"filePath" jsonschema:"description=path of the file relative to the project root"`
	Overview  string    `json:"overview" jsonschema:"description=what will change in this file and why"`
	Operation Operation `json:"operation" jsonschema:"enum=new_file,enum=delete_file,enum=modify_file"`
}

// ChangeOverviewList is the schema root for planning responses.
type ChangeOverviewList struct {
	Changes []ChangeOverview `json:"changes"`
}

// Change is one concrete edit instruction for a file.
type Change struct {
	Operation               Operation        `json:"operation" jsonschema:"enum=new_file,enum=delete_file,enum=modify_file"`
	FilePath                string           `json:"filePath"`
	ModificationType        ModificationType `json:"modificationType" jsonschema:"enum=replace_block,enum=add_block,enum=remove_block,enum=none"`
	ModificationDescription string           `json:"modificationDescription"`
	OldCodeBlock            string           `json:"oldCodeBlock" jsonschema:"description=existing code targeted by the modification or empty when not applicable"`
	NewCodeBlock            string           `json:"newCodeBlock" jsonschema:"description=code to insert or the full content of a new file or empty when not applicable"`
}

// ChangeList is the schema root for generation responses.
type ChangeList struct {
	Changes []Change `json:"changes"`
}

// Validate checks the structural invariants between operation,
// modification type and code blocks.
func (c Change) Validate() error {
	if !c.Operation.Valid() {
		return fmt.Errorf("change for %q: unknown operation %q", c.FilePath, c.Operation)
	}
	if !c.ModificationType.Valid() {
		return fmt.Errorf("change for %q: unknown modification type %q", c.FilePath, c.ModificationType)
	}
	if strings.TrimSpace(c.FilePath) == "" {
		return fmt.Errorf("change has an empty file path")
	}
	isDelete := c.Operation == OperationDeleteFile
	if isDelete != (c.ModificationType == ModificationNone) {
		return fmt.Errorf("change for %q: modification type %q does not fit operation %q", c.FilePath, c.ModificationType, c.Operation)
	}
	switch c.Operation {
	case OperationNewFile:
		if c.NewCodeBlock == "" {
			return fmt.Errorf("change for %q: new_file requires newCodeBlock", c.FilePath)
		}
	case OperationModifyFile:
		if c.ModificationType != ModificationRemoveBlock && c.NewCodeBlock == "" {
			return fmt.Errorf("change for %q: %s requires newCodeBlock", c.FilePath, c.ModificationType)
		}
	}
	return nil
}

// CleanPath normalizes a project-relative path to its canonical key form.
func CleanPath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	return strings.TrimPrefix(p, "./")
}

package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dimslaev/spaider/pkg/types"
)

func TestBuildIntentPrompt(t *testing.T) {
	files := []types.FileContext{
		{Path: "src/a.ts", Content: "line1\nline2\nline3\n", Loaded: true},
		{Path: "src/b.ts"},
	}

	got := BuildIntentPrompt("  rename foo  ", files, "src/a.ts: foo, bar\n", 2)

	assert.True(t, strings.HasPrefix(got, "User request:\nrename foo\n"))
	assert.Contains(t, got, "### src/a.ts\n```typescript\nline1\nline2\n```\n(showing first 2 lines)")
	assert.NotContains(t, got, "line3")
	assert.Contains(t, got, "### src/b.ts\n(content not loaded)")
	assert.Contains(t, got, "Symbol summary:\nsrc/a.ts: foo, bar\n")
}

func TestBuildIntentPrompt_Empty(t *testing.T) {
	got := BuildIntentPrompt("explain", nil, "", 20)
	assert.Contains(t, got, "Known files:\n(none)\n")
	assert.Contains(t, got, "Symbol summary:\n(no symbols)\n")
}

func TestBuildGeneratorPrompt(t *testing.T) {
	modify := types.ChangeOverview{FilePath: "main.go", Operation: types.OperationModifyFile, Overview: "add a flag"}
	got := BuildGeneratorPrompt("add --verbose", modify, types.FileContext{Path: "main.go", Content: "package main", Loaded: true})
	assert.Contains(t, got, "File: main.go\nOperation: modify_file\nPlan: add a flag\n")
	assert.Contains(t, got, "```go\npackage main\n```\n")

	create := types.ChangeOverview{FilePath: "new.py", Operation: types.OperationNewFile}
	got = BuildGeneratorPrompt("add", create, types.FileContext{})
	assert.Contains(t, got, "new.py does not exist yet.")
}

func TestBuildBatchGeneratorPrompt(t *testing.T) {
	overviews := []types.ChangeOverview{
		{FilePath: "a.go", Operation: types.OperationModifyFile, Overview: "one"},
		{FilePath: "b.go", Operation: types.OperationNewFile, Overview: "two"},
	}
	files := map[string]types.FileContext{"a.go": {Path: "a.go", Content: "package a\n", Loaded: true}}

	got := BuildBatchGeneratorPrompt("task", overviews, files)
	assert.Contains(t, got, "1. a.go (modify_file): one\n2. b.go (new_file): two\n")
	assert.Contains(t, got, "Current content of a.go:\n```go\npackage a\n```")
	assert.Contains(t, got, "b.go does not exist yet.")
}

func TestBuildApplyPrompt_ListsInstructionsInOrder(t *testing.T) {
	changes := []types.Change{
		{ModificationType: types.ModificationReplaceBlock, ModificationDescription: "rename", OldCodeBlock: "a := 1", NewCodeBlock: "b := 1"},
		{ModificationType: types.ModificationRemoveBlock, ModificationDescription: "drop debug", OldCodeBlock: "println()"},
	}
	got := BuildApplyPrompt("x.go", "a := 1\nprintln()", changes)

	first := strings.Index(got, "1. [replace_block] rename")
	second := strings.Index(got, "2. [remove_block] drop debug")
	assert.True(t, first > 0 && second > first)
	assert.Contains(t, got, "Existing code:\n```go\nprintln()\n```")
	assert.Equal(t, 1, strings.Count(got, "New code:"))
	assert.True(t, strings.HasSuffix(got, "Return the complete updated content of x.go.\n"))
}

func TestRoles(t *testing.T) {
	for name, role := range map[string]string{
		"intent":    IntentRole(),
		"planner":   PlannerRole(),
		"generator": GeneratorRole(),
		"batch":     BatchGeneratorRole(),
		"apply":     ApplyRole(),
		"answer":    AnswerRole(),
	} {
		assert.NotEmpty(t, role, name)
	}
	assert.Contains(t, IntentRole(), "editMode false")
	assert.Contains(t, IntentRole(), "symbol summary")
}

// Package generator turns planned file overviews into concrete edit
// instructions.
package generator

import (
	"context"
	"fmt"

	"github.com/dimslaev/spaider/pkg/llm"
	"github.com/dimslaev/spaider/pkg/prompts"
	"github.com/dimslaev/spaider/pkg/types"
	"github.com/dimslaev/spaider/pkg/utils"
)

// Schema is the response schema of the generation stage.
var Schema = llm.MustSchemaFor[types.ChangeList]("changes", "Concrete edit instructions")

// ChangeMismatchError reports a generated change that does not fit the plan.
type ChangeMismatchError struct {
	Path      string
	Operation types.Operation
	Change    types.Change
	Reason    string
}

func (e *ChangeMismatchError) Error() string {
	return fmt.Sprintf("generated change for %q (%s) does not match plan %s for %q: %s",
		e.Change.FilePath, e.Change.Operation, e.Operation, e.Path, e.Reason)
}

// Generator runs the generation stage.
type Generator struct {
	client llm.Completer
	logger *utils.Logger
}

func New(client llm.Completer, logger *utils.Logger) *Generator {
	if logger == nil {
		logger = utils.Discard()
	}
	return &Generator{client: client, logger: logger}
}

// Generate returns the changes for one planned file. Deletions are answered
// without a backend call.
func (g *Generator) Generate(ctx context.Context, description string, overview types.ChangeOverview, file types.FileContext) ([]types.Change, error) {
	if overview.Operation == types.OperationDeleteFile {
		return []types.Change{deleteChange(overview)}, nil
	}

	prompt := prompts.BuildGeneratorPrompt(description, overview, file)
	list, err := llm.Structured[types.ChangeList](ctx, g.client, prompts.GeneratorRole(), prompt, Schema)
	if err != nil {
		return nil, fmt.Errorf("change generation for %s failed: %w", overview.FilePath, err)
	}

	changes := make([]types.Change, 0, len(list.Changes))
	for _, c := range list.Changes {
		c.FilePath = types.CleanPath(c.FilePath)
		if err := check(overview, c); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	g.logger.Logf("generator: %d change(s) for %s", len(changes), overview.FilePath)
	return changes, nil
}

// GenerateBatch returns the changes of every planned file, keyed by path,
// using a single completion for all files that are not deleted.
func (g *Generator) GenerateBatch(ctx context.Context, description string, overviews []types.ChangeOverview, files map[string]types.FileContext) (map[string][]types.Change, error) {
	result := make(map[string][]types.Change, len(overviews))
	planned := make(map[string]types.ChangeOverview, len(overviews))
	var pending []types.ChangeOverview
	for _, o := range overviews {
		planned[o.FilePath] = o
		if o.Operation == types.OperationDeleteFile {
			result[o.FilePath] = []types.Change{deleteChange(o)}
			continue
		}
		pending = append(pending, o)
		result[o.FilePath] = []types.Change{}
	}
	if len(pending) == 0 {
		return result, nil
	}

	prompt := prompts.BuildBatchGeneratorPrompt(description, pending, files)
	list, err := llm.Structured[types.ChangeList](ctx, g.client, prompts.BatchGeneratorRole(), prompt, Schema)
	if err != nil {
		return nil, fmt.Errorf("batch change generation failed: %w", err)
	}

	for _, c := range list.Changes {
		c.FilePath = types.CleanPath(c.FilePath)
		o, ok := planned[c.FilePath]
		if !ok || o.Operation == types.OperationDeleteFile {
			return nil, &ChangeMismatchError{Path: c.FilePath, Change: c, Reason: "file is not planned for generation"}
		}
		if err := check(o, c); err != nil {
			return nil, err
		}
		result[c.FilePath] = append(result[c.FilePath], c)
	}
	g.logger.Logf("generator: %d change(s) for %d file(s) in one batch", len(list.Changes), len(pending))
	return result, nil
}

func deleteChange(o types.ChangeOverview) types.Change {
	return types.Change{
		Operation:               types.OperationDeleteFile,
		FilePath:                o.FilePath,
		ModificationType:        types.ModificationNone,
		ModificationDescription: o.Overview,
	}
}

// check enforces that c targets the planned file with the planned operation
// and is structurally valid.
func check(o types.ChangeOverview, c types.Change) error {
	mismatch := func(reason string) error {
		return &ChangeMismatchError{Path: o.FilePath, Operation: o.Operation, Change: c, Reason: reason}
	}
	if c.FilePath != o.FilePath {
		return mismatch("wrong file")
	}
	if c.Operation != o.Operation {
		return mismatch("wrong operation")
	}
	if err := c.Validate(); err != nil {
		return mismatch(err.Error())
	}
	return nil
}

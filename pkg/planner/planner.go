// Package planner decides which files a task creates, deletes or modifies
// before any code is generated.
package planner

import (
	"context"
	"fmt"

	"github.com/dimslaev/spaider/pkg/llm"
	"github.com/dimslaev/spaider/pkg/prompts"
	"github.com/dimslaev/spaider/pkg/types"
	"github.com/dimslaev/spaider/pkg/utils"
)

// DefaultPreviewLines is how much of each file the planner sees.
const DefaultPreviewLines = 200

// Schema is the response schema of the planning stage.
var Schema = llm.MustSchemaFor[types.ChangeOverviewList]("change_overviews", "Per-file plan of a code change")

// Planner runs the planning stage.
type Planner struct {
	client       llm.Completer
	previewLines int
	logger       *utils.Logger
}

func New(client llm.Completer, previewLines int, logger *utils.Logger) *Planner {
	if previewLines <= 0 {
		previewLines = DefaultPreviewLines
	}
	if logger == nil {
		logger = utils.Discard()
	}
	return &Planner{client: client, previewLines: previewLines, logger: logger}
}

// Plan issues one structured completion and returns the overviews in the
// order given. Paths are cleaned and a path listed twice keeps its first entry.
func (p *Planner) Plan(ctx context.Context, description string, files []types.FileContext) ([]types.ChangeOverview, error) {
	prompt := prompts.BuildPlannerPrompt(description, files, p.previewLines)

	list, err := llm.Structured[types.ChangeOverviewList](ctx, p.client, prompts.PlannerRole(), prompt, Schema)
	if err != nil {
		return nil, fmt.Errorf("change planning failed: %w", err)
	}

	seen := make(map[string]bool, len(list.Changes))
	out := make([]types.ChangeOverview, 0, len(list.Changes))
	for _, o := range list.Changes {
		o.FilePath = types.CleanPath(o.FilePath)
		if o.FilePath == "" {
			p.logger.Logf("planner: dropping overview without a file path")
			continue
		}
		if seen[o.FilePath] {
			p.logger.Logf("planner: dropping duplicate overview for %s", o.FilePath)
			continue
		}
		seen[o.FilePath] = true
		out = append(out, o)
	}
	p.logger.Logf("planner: %d file(s) planned", len(out))
	return out, nil
}

// Package intent classifies a request and extracts scope hints for discovery.
package intent

import (
	"context"
	"fmt"

	"github.com/dimslaev/spaider/pkg/index"
	"github.com/dimslaev/spaider/pkg/llm"
	"github.com/dimslaev/spaider/pkg/prompts"
	"github.com/dimslaev/spaider/pkg/types"
	"github.com/dimslaev/spaider/pkg/utils"
)

// DefaultPreviewLines is how much of each known file the analyzer shows.
const DefaultPreviewLines = 20

// Schema is the response schema of the intent stage.
var Schema = llm.MustSchemaFor[types.Intent]("intent", "Classification of a user request against a codebase")

// Analyzer runs the intent stage.
type Analyzer struct {
	client       llm.Completer
	extractor    index.Extractor
	previewLines int
	logger       *utils.Logger
}

// NewAnalyzer returns an Analyzer. A nil extractor disables the symbol summary.
func NewAnalyzer(client llm.Completer, extractor index.Extractor, previewLines int, logger *utils.Logger) *Analyzer {
	if previewLines <= 0 {
		previewLines = DefaultPreviewLines
	}
	if logger == nil {
		logger = utils.Discard()
	}
	return &Analyzer{client: client, extractor: extractor, previewLines: previewLines, logger: logger}
}

// Analyze issues one structured completion for request given the files
// known so far. The returned Intent is normalized.
func (a *Analyzer) Analyze(ctx context.Context, request string, files []types.FileContext) (types.Intent, error) {
	summary := index.Summarize(a.symbols(files))
	prompt := prompts.BuildIntentPrompt(request, files, summary, a.previewLines)

	intent, err := llm.Structured[types.Intent](ctx, a.client, prompts.IntentRole(), prompt, Schema)
	if err != nil {
		return types.Intent{}, fmt.Errorf("intent analysis failed: %w", err)
	}
	intent.Normalize()
	a.logger.Logf("intent: editMode=%t needsMoreContext=%t filePaths=%v searchTerms=%v",
		intent.EditMode, intent.NeedsMoreContext, intent.FilePaths, intent.SearchTerms)
	return intent, nil
}

// symbols prefers symbols already attached to a file and extracts the rest.
func (a *Analyzer) symbols(files []types.FileContext) []index.FileSymbols {
	var out []index.FileSymbols
	for _, f := range files {
		switch {
		case len(f.Symbols) > 0:
			syms := make([]index.Symbol, len(f.Symbols))
			for i, name := range f.Symbols {
				syms[i] = index.Symbol{Name: name}
			}
			out = append(out, index.FileSymbols{File: f.Path, Symbols: syms})
		case f.Loaded && a.extractor != nil && a.extractor.Supports(f.Path):
			out = append(out, index.FileSymbols{File: f.Path, Symbols: a.extractor.Extract(f.Path, f.Content)})
		}
	}
	return out
}
